package billing

import "fmt"

// DecodeError reports a response that is missing a required field. Bucket
// indexes the merged, chronological bucket list and is -1 when the bucket
// could not be placed; Page is the response page it came from.
type DecodeError struct {
	Page   int
	Bucket int
	Group  int
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	where := fmt.Sprintf("page %d", e.Page)
	if e.Bucket >= 0 {
		where += fmt.Sprintf(" bucket %d", e.Bucket)
	}
	if e.Group >= 0 {
		where += fmt.Sprintf(" group %d", e.Group)
	}
	if e.Err != nil {
		return fmt.Sprintf("decode cost response: %s: %s: %v", where, e.Field, e.Err)
	}
	return fmt.Sprintf("decode cost response: %s: missing %s", where, e.Field)
}

func (e *DecodeError) Unwrap() error { return e.Err }
