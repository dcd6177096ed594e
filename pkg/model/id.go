package model

import (
	"strconv"

	"github.com/google/uuid"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/harrisonrobin/dayplan/task"))

// AssignIDs fills empty task IDs with a UUID derived from scope, date, name
// and the position among tasks sharing those, so re-reading the same input
// yields the same IDs and calendar events are patched, not recreated.
func AssignIDs(scope string, tasks []Task) {
	seen := make(map[string]int)
	for i := range tasks {
		if tasks[i].ID != "" {
			continue
		}
		base := scope + "/" + tasks[i].Date.Format(DateLayout) + "/" + tasks[i].Name
		n := seen[base]
		seen[base] = n + 1
		tasks[i].ID = uuid.NewSHA1(idNamespace, []byte(base+"/"+strconv.Itoa(n))).String()
	}
}
