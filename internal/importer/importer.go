// Package importer loads declared dependency graphs from YAML files
// and applies them through the dependency registry. Importing the same
// file twice is a no-op: edges that already exist are skipped.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	depsvc "github.com/fluxline-cloud/fluxline/api/rest/service/dependency"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/graphdef"
	"github.com/fluxline-cloud/fluxline/pkg/log"
	"gorm.io/gorm"
)

type Importer struct {
	deps depsvc.Dependency
}

func New(ctx context.Context, conn *gorm.DB) *Importer {
	return &Importer{
		deps: depsvc.Service(ctx).WithDatabase(conn),
	}
}

// ImportPath imports every .yaml/.yml graph definition under path.
func (i *Importer) ImportPath(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("reading graph definitions path %q: %w", path, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
		default:
			continue
		}

		name := filepath.Join(path, entry.Name())

		if err := i.ImportFile(name); err != nil {
			return fmt.Errorf("importing %q: %w", name, err)
		}
	}

	return nil
}

func (i *Importer) ImportFile(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	def, err := graphdef.Parse(data)
	if err != nil {
		return err
	}

	added, skipped, err := i.Apply(def)
	if err != nil {
		return err
	}

	log.Info(
		"graph definition imported",
		"file", name,
		"org_id", def.Metadata.OrgID,
		"added", added,
		"skipped", skipped,
	)

	return nil
}

// Apply inserts the definition's edges, skipping ones that already
// exist. It reports how many edges were added and skipped.
func (i *Importer) Apply(def *graphdef.Definition) (added, skipped int, err error) {
	for idx := range def.Edges {
		edge := &def.Edges[idx]

		req := &depsvc.AddRequest{
			OrgID:          def.Metadata.OrgID,
			UpstreamType:   models.NodeType(edge.Upstream.Type),
			UpstreamID:     edge.Upstream.ID,
			DownstreamType: models.NodeType(edge.Downstream.Type),
			DownstreamID:   edge.Downstream.ID,
		}

		if edge.Freshness != nil {
			value := edge.Freshness.Value
			req.CheckTimeframeValue = &value

			if edge.Freshness.Unit != "" {
				unit := models.TimeframeUnit(edge.Freshness.Unit)
				req.CheckTimeframeUnit = &unit
			}
		}

		if _, err := i.deps.Add(req); err != nil {
			if cfgErr, ok := err.(*depsvc.ConfigError); ok && cfgErr.Code == depsvc.CodeDuplicate {
				skipped++
				continue
			}
			return added, skipped, fmt.Errorf(
				"edge %s -> %s: %w",
				edge.Upstream, edge.Downstream, err,
			)
		}

		added++
	}

	return added, skipped, nil
}
