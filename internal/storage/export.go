package storage

import (
	"encoding/json"
	"io"
)

type ExportBody struct {
	Name     string       `json:"name"`
	Mass     float64      `json:"mass"`
	Elapsed  []float64    `json:"elapsed"`
	Position [][3]float64 `json:"position"`
	Velocity [][3]float64 `json:"velocity"`
}

type ExportData struct {
	Run    RunMetadata  `json:"run"`
	Bodies []ExportBody `json:"bodies"`
}

// ExportJSON writes a run grouped by body.
func ExportJSON(w io.Writer, meta RunMetadata, records []Record) error {
	data := ExportData{Run: meta}
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.Body]
		if !ok {
			i = len(data.Bodies)
			index[r.Body] = i
			data.Bodies = append(data.Bodies, ExportBody{Name: r.Body, Mass: r.Mass})
		}
		b := &data.Bodies[i]
		b.Elapsed = append(b.Elapsed, r.Elapsed)
		b.Position = append(b.Position, [3]float64{r.Position.X, r.Position.Y, r.Position.Z})
		b.Velocity = append(b.Velocity, [3]float64{r.Velocity.X, r.Velocity.Y, r.Velocity.Z})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
