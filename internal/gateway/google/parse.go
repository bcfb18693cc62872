package google

import (
	"fmt"
	"strconv"
	"strings"

	"budgetboard/internal/core"
)

// parseProjects converts a values matrix (as returned by the Sheets API)
// into projects. Rows without a numeric id are skipped: headers, blank
// lines, and rows cleared by a deletion all fall out here.
func parseProjects(rows [][]interface{}) []core.Project {
	var out []core.Project
	for _, row := range rows {
		if p, ok := parseProjectRow(row); ok {
			out = append(out, p)
		}
	}
	return out
}

func parseProjectRow(row []interface{}) (core.Project, bool) {
	cols := toStrings(row)
	id, err := strconv.ParseInt(safeGet(cols, 0), 10, 64)
	if err != nil || id <= 0 {
		return core.Project{}, false
	}
	status := core.ProjectStatus(strings.TrimSpace(safeGet(cols, 7)))
	if !status.IsValid() {
		status = core.StatusActive
	}
	return core.Project{
		ID:       id,
		Name:     safeGet(cols, 1),
		Group:    safeGet(cols, 2),
		Owner:    safeGet(cols, 3),
		Budget:   core.Money{Satang: core.CoerceSatang(safeGet(cols, 4))},
		Spent:    core.Money{Satang: core.CoerceSatang(safeGet(cols, 5))},
		Category: safeGet(cols, 6),
		Status:   status,
	}, true
}

func parseExpenses(rows [][]interface{}) []core.Expense {
	var out []core.Expense
	for _, row := range rows {
		cols := toStrings(row)
		projectID, err := strconv.ParseInt(safeGet(cols, 1), 10, 64)
		if err != nil || projectID <= 0 {
			continue
		}
		id, _ := strconv.ParseInt(safeGet(cols, 0), 10, 64)
		out = append(out, core.Expense{
			ID:        id,
			ProjectID: projectID,
			Date:      safeGet(cols, 2),
			Amount:    core.Money{Satang: core.CoerceSatang(safeGet(cols, 3))},
			Item:      safeGet(cols, 4),
			Note:      safeGet(cols, 5),
		})
	}
	return out
}

func parseLogs(rows [][]interface{}) []core.LogEntry {
	var out []core.LogEntry
	for _, row := range rows {
		cols := toStrings(row)
		id, err := strconv.ParseInt(safeGet(cols, 0), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		status := core.LogStatus(safeGet(cols, 4))
		if status != core.LogSuccess && status != core.LogFailed {
			status = core.LogFailed
		}
		out = append(out, core.LogEntry{
			ID:        id,
			Timestamp: safeGet(cols, 1),
			Username:  safeGet(cols, 2),
			Role:      parseRole(safeGet(cols, 3)),
			Status:    status,
		})
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
