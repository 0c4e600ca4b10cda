package schema

// VolumeTable represents the 'volume' table
type VolumeTable struct {
	Table       string
	VolumeID    string
	NovelID     string
	VolumeOrder string
}

// Volume is the schema definition for volume
var Volume = VolumeTable{
	Table:       "volume",
	VolumeID:    "volume_id",
	NovelID:     "novel_id",
	VolumeOrder: "volume_order",
}

func (t VolumeTable) Columns() []string {
	return []string{t.VolumeID, t.NovelID, t.VolumeOrder}
}
