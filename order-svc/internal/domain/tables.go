package domain

import "sort"

// TableGroup is the dashboard view of one table's orders.
type TableGroup struct {
	TableNumber *int    `json:"table_number"`
	OrderCount  int     `json:"order_count"`
	OpenCount   int     `json:"open_count"`
	Total       float64 `json:"total"`
	Orders      []Order `json:"orders"`
}

// GroupByTable buckets orders by table number, ascending, with orders that
// have no table in a final group. Order within a group is preserved.
func GroupByTable(orders []Order) []TableGroup {
	byTable := map[int]*TableGroup{}
	var noTable *TableGroup

	for _, o := range orders {
		var g *TableGroup
		if o.TableNumber == nil {
			if noTable == nil {
				noTable = &TableGroup{Orders: []Order{}}
			}
			g = noTable
		} else {
			n := *o.TableNumber
			if byTable[n] == nil {
				byTable[n] = &TableGroup{TableNumber: &n, Orders: []Order{}}
			}
			g = byTable[n]
		}
		g.Orders = append(g.Orders, o)
		g.OrderCount++
		if o.Status.Open() {
			g.OpenCount++
		}
		g.Total = Round2(g.Total + o.TotalAmount)
	}

	numbers := make([]int, 0, len(byTable))
	for n := range byTable {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	groups := make([]TableGroup, 0, len(numbers)+1)
	for _, n := range numbers {
		groups = append(groups, *byTable[n])
	}
	if noTable != nil {
		groups = append(groups, *noTable)
	}
	return groups
}
