package migration

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
)

// ErrNewerSchema is returned for files written by a newer pedigree.
var ErrNewerSchema = errors.New("file schema is newer than this program")

type Migration struct {
	FromVersion string
	ToVersion   string
	Apply       func(data map[string]any) (map[string]any, error)
}

// Legacy is the version assumed for files without a version key.
const Legacy = "0.0.0"

var migrations = []Migration{
	{
		FromVersion: Legacy,
		ToVersion:   "1.0.0",
		Apply:       migrate_0_0_0_to_1_0_0,
	},
	{
		FromVersion: "1.0.0",
		ToVersion:   "2.0.0",
		Apply:       migrate_1_0_0_to_2_0_0,
	},
}

// Latest is the schema version written by this program.
func Latest() string {
	return migrations[len(migrations)-1].ToVersion
}

type Result struct {
	From string
	To   string
}

func (r Result) Changed() bool { return r.From != r.To }

// Migrate upgrades data to the latest schema version. The returned map may
// share structure with data.
func Migrate(data map[string]any, log *zap.Logger) (map[string]any, Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	currentVer := Legacy
	if v, ok := data["version"]; ok && v != nil {
		currentVer = fmt.Sprint(v)
	}
	res := Result{From: currentVer, To: currentVer}

	cur, err := semver.NewVersion(currentVer)
	if err != nil {
		return nil, res, fmt.Errorf("invalid schema version %q: %w", currentVer, err)
	}
	latest := semver.MustParse(Latest())
	if cur.GreaterThan(latest) {
		return nil, res, fmt.Errorf("version %s, supported up to %s: %w", currentVer, Latest(), ErrNewerSchema)
	}
	currentVer = cur.String()

	for {
		var foundMigration *Migration
		for i := range migrations {
			if migrations[i].FromVersion == currentVer {
				foundMigration = &migrations[i]
				break
			}
		}

		if foundMigration == nil {
			break
		}

		log.Debug("migrating relations file",
			zap.String("from", currentVer),
			zap.String("to", foundMigration.ToVersion))

		newData, err := foundMigration.Apply(data)
		if err != nil {
			return nil, res, fmt.Errorf("migration %s -> %s failed: %w", currentVer, foundMigration.ToVersion, err)
		}

		data = newData
		currentVer = foundMigration.ToVersion
		data["version"] = currentVer
	}

	res.To = currentVer
	if currentVer != Latest() {
		return nil, res, fmt.Errorf("no migration from schema version %s", currentVer)
	}
	return data, res, nil
}
