package schema

// OrderingTable represents a per-novel ordering bookkeeping table
// (volume_ordering, chapter_ordering). Both share the same shape:
// the next unused order value and the explicit order-sorted child id list.
type OrderingTable struct {
	Table     string
	NovelID   string
	NextOrder string
	Ordering  string
}

// VolumeOrdering is the schema definition for volume_ordering
var VolumeOrdering = OrderingTable{
	Table:     "volume_ordering",
	NovelID:   "novel_id",
	NextOrder: "next_order",
	Ordering:  "ordering",
}

// ChapterOrdering is the schema definition for chapter_ordering
var ChapterOrdering = OrderingTable{
	Table:     "chapter_ordering",
	NovelID:   "novel_id",
	NextOrder: "next_order",
	Ordering:  "ordering",
}

func (t OrderingTable) Columns() []string {
	return []string{t.NovelID, t.NextOrder, t.Ordering}
}
