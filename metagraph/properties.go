package metagraph

import (
	"github.com/aukilabs/depthmap/format"
)

// FileProperties describes who made a graph file and what it shows.
type FileProperties struct {
	Creator      string `json:"creator"      yaml:"creator"`
	Organization string `json:"organization" yaml:"organization"`
	CreateDate   string `json:"create_date"  yaml:"create_date"`
	Program      string `json:"program"      yaml:"program"`
	Title        string `json:"title"        yaml:"title"`
	Location     string `json:"location"     yaml:"location"`
	Description  string `json:"description"  yaml:"description"`
}

// unknownProperties fills the properties of files stored without them.
func unknownProperties() FileProperties {
	return FileProperties{
		Creator:      UnknownName,
		Organization: UnknownName,
		CreateDate:   UnknownName,
		Program:      UnknownName,
	}
}

func readProperties(r *format.Reader) FileProperties {
	return FileProperties{
		Creator:      r.String(),
		Organization: r.String(),
		CreateDate:   r.String(),
		Program:      r.String(),
		Title:        r.String(),
		Location:     r.String(),
		Description:  r.String(),
	}
}

func writeProperties(w *format.Writer, p FileProperties) {
	w.String(p.Creator)
	w.String(p.Organization)
	w.String(p.CreateDate)
	w.String(p.Program)
	w.String(p.Title)
	w.String(p.Location)
	w.String(p.Description)
}
