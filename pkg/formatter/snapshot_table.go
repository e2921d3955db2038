package formatter

import (
	"fmt"
	"io"

	"github.com/devA2C3/cloudvisor-test/internal/models"
	"github.com/devA2C3/cloudvisor-test/pkg/utils"
)

// PrintSnapshotTable prints the instances of a stored region snapshot in stored order
func PrintSnapshotTable(out io.Writer, region string, snap models.Snapshot) {
	if len(snap) == 0 {
		fmt.Fprintf(out, "No instances in snapshot for %s.\n", region)
		return
	}

	w := newTableWriter(out)

	fmt.Fprintf(w, "Region: %s (%s)\n", region, utils.GetRegionDescriptiveName(region))
	fmt.Fprintln(w, "INSTANCE ID\tNAME\tTYPE\tSTATE\tLAUNCH TIME\tEPOCH")

	for _, record := range snap {
		name := utils.GetTagValueFromFields(record.Fields, "Name")
		if name == "" {
			name = "<unnamed>"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			record.InstanceID,
			TruncateWidth(name, MaxNameWidth),
			orDash(stringField(record.Fields, "InstanceType")),
			orDash(stringField(record.Fields, "State", "Name")),
			record.LaunchTime,
			record.EpochSeconds,
		)
	}

	fmt.Fprintf(w, "Total:\t%d instances\t\t\t\t\n", len(snap))

	w.Flush()
}

// stringField walks nested objects and returns the string at path, or ""
func stringField(fields map[string]interface{}, path ...string) string {
	var cur interface{} = fields
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return s
}
