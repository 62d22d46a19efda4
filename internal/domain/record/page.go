package record

// Page selects a window of records ordered by id.
type Page struct {
	Skip  int
	Limit int
}
