package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/format"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// Rank sorts series by month-to-date cost, most expensive first. Equal costs
// keep their input order.
func Rank(series []model.Series) []model.Series {
	ranked := make([]model.Series, len(series))
	copy(ranked, series)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Latest() > ranked[j].Latest()
	})
	return ranked
}

// LabelWidth returns the length of the longest account label.
func LabelWidth(series []model.Series) int {
	width := 0
	for _, s := range series {
		width = max(width, utf8.RuneCountInString(s.Account.Label()))
	}
	return width
}

// Table renders ranked series as a fixed-width text table.
type Table struct {
	Title     string
	Width     int
	Yesterday map[string]float64
	Policy    Policy
}

// Render writes the header, one row per included account and the Other row.
// It returns the buffer and the rows in ranked order.
func (t Table) Render(ranked []model.Series) (string, []model.Row) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | Month-to-date | yesterday | Last month\n", format.Center("AWS Accounts", t.Width))

	rows := make([]model.Row, 0, len(ranked))
	var otherMTD, otherLast float64

	for rank, s := range ranked {
		row := model.Row{
			Account:     s.Account,
			Section:     t.Title,
			MonthToDate: s.At(0),
			Yesterday:   t.Yesterday[s.Account.ID],
			LastMonth:   s.At(1),
			Listed:      t.Policy.Include(rank, s),
		}
		rows = append(rows, row)

		if !row.Listed {
			otherMTD += row.MonthToDate
			otherLast += row.LastMonth
			continue
		}
		fmt.Fprintf(&b, "%s | %s$ | %s$ | %s$\n",
			format.PadRight(s.Account.Label(), t.Width),
			format.PadLeft(format.Money(row.MonthToDate), 12),
			format.PadLeft(format.Money(row.Yesterday), 8),
			fixed2(row.LastMonth),
		)
	}

	fmt.Fprintf(&b, "%s | %s$ |           | %s$\n",
		format.PadRight("Other", t.Width),
		format.PadLeft(format.Money(otherMTD), 12),
		fixed2(otherLast),
	)

	return b.String(), rows
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
