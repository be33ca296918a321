package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Small    jsonSmall    `json:"small"`
	Deletion jsonDeletion `json:"deletion"`
	Meta     jsonMeta     `json:"meta"`
}

// jsonSmall answers the small directory query.
type jsonSmall struct {
	Limit uint64    `json:"limit"`
	Sum   uint64    `json:"sum"`
	Dirs  []jsonDir `json:"dirs"`
}

// jsonDeletion answers the deletion query.
type jsonDeletion struct {
	Capacity   uint64   `json:"capacity"`
	Required   uint64   `json:"required"`
	Unused     uint64   `json:"unused"`
	NeedToFree uint64   `json:"need_to_free"`
	Candidate  *jsonDir `json:"candidate"`
}

// jsonDir is a directory with its size.
type jsonDir struct {
	Path      string `json:"path"`
	Size      uint64 `json:"size"`
	SizeHuman string `json:"size_human"`
}

// jsonMeta describes the transcript and the run.
type jsonMeta struct {
	Source    string `json:"source"`
	TotalSize uint64 `json:"total_size"`
	Dirs      int    `json:"dirs"`
	Files     int    `json:"files"`
	Elapsed   string `json:"elapsed"`
	Cached    bool   `json:"cached"`
}

// JSONFormatter formats output as a single indented JSON object with
// small, deletion and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *analyze.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSON(r))
}

func buildJSON(r *analyze.Result) jsonOutput {
	dirs := make([]jsonDir, len(r.SmallDirs))
	for i, d := range r.SmallDirs {
		dirs[i] = toJSONDir(d)
	}

	out := jsonOutput{
		Small: jsonSmall{Limit: r.SmallLimit, Sum: r.SmallSum, Dirs: dirs},
		Deletion: jsonDeletion{
			Capacity:   r.Capacity,
			Required:   r.Required,
			Unused:     r.Unused,
			NeedToFree: r.NeedToFree,
		},
		Meta: jsonMeta{
			Source:    r.Source,
			TotalSize: r.TotalSize,
			Dirs:      r.Dirs,
			Files:     r.Files,
			Elapsed:   r.Elapsed.String(),
			Cached:    r.Cached,
		},
	}
	if r.Candidate != nil {
		c := toJSONDir(*r.Candidate)
		out.Deletion.Candidate = &c
	}
	return out
}

func toJSONDir(d analyze.DirSummary) jsonDir {
	return jsonDir{Path: d.Path, Size: d.Size, SizeHuman: types.FormatSize(d.Size)}
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
