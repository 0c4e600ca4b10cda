package schema

// ChapterTable represents the 'chapter' table
type ChapterTable struct {
	Table        string
	ChapterID    string
	NovelID      string
	VolumeID     string
	ChapterOrder string
}

// Chapter is the schema definition for chapter
var Chapter = ChapterTable{
	Table:        "chapter",
	ChapterID:    "chapter_id",
	NovelID:      "novel_id",
	VolumeID:     "volume_id",
	ChapterOrder: "chapter_order",
}

func (t ChapterTable) Columns() []string {
	return []string{t.ChapterID, t.NovelID, t.VolumeID, t.ChapterOrder}
}
