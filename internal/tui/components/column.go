package components

// ColumnType identifies what a column lists
type ColumnType int

const (
	ColumnTypeCourses ColumnType = iota
	ColumnTypeDivisions
	ColumnTypeContents
	ColumnTypeSearch
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeCourses:
		return "courses"
	case ColumnTypeDivisions:
		return "divisions"
	case ColumnTypeContents:
		return "contents"
	case ColumnTypeSearch:
		return "search"
	default:
		return "unknown"
	}
}
