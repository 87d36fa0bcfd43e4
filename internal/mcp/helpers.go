package mcp

import (
	"github.com/gorewood/rustme/internal/generate"
)

func dirOrDefault(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

// toFileSummaries flattens a report into one entry per document.
func toFileSummaries(report *generate.Report, onlyChanged bool) []FileSummary {
	if report == nil {
		return nil
	}
	result := make([]FileSummary, 0, report.FileCount())
	for _, c := range report.Configs {
		for _, f := range c.Files {
			if onlyChanged && !f.Changed {
				continue
			}
			result = append(result, FileSummary{
				Config:          c.Path,
				Name:            f.Name,
				Path:            f.Path,
				Bytes:           f.Bytes,
				Changed:         f.Changed,
				ChangedHeadings: f.ChangedHeadings,
			})
		}
	}
	return result
}
