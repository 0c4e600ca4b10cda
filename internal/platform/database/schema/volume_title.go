package schema

// VolumeTitleTable represents the 'volume_title' table
type VolumeTitleTable struct {
	Table    string
	VolumeID string
	NovelID  string
	Lang     string
	Official string
	Title    string
	Latin    string
}

// VolumeTitle is the schema definition for volume_title
var VolumeTitle = VolumeTitleTable{
	Table:    "volume_title",
	VolumeID: "volume_id",
	NovelID:  "novel_id",
	Lang:     "lang",
	Official: "official",
	Title:    "title",
	Latin:    "latin",
}

func (t VolumeTitleTable) Columns() []string {
	return []string{t.VolumeID, t.NovelID, t.Lang, t.Official, t.Title, t.Latin}
}
