package registry

import (
	"encoding/json"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dativetop/dativetop-server/internal/model"
)

// instanceDiff renders the change between two instances as a compact
// "-removed +added" string over their JSON forms, for the update log.
func instanceDiff(before, after model.Instance) string {
	a, err := json.Marshal(before)
	if err != nil {
		return ""
	}
	b, err := json.Marshal(after)
	if err != nil {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(a), string(b), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("+" + d.Text + " ")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("-" + d.Text + " ")
		}
	}
	return strings.TrimSpace(sb.String())
}
