package pipeline

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const pipelinesEnv = "CONTENT_PIPELINES_YAML"

//go:embed pipelines.yaml
var pipelinesFS embed.FS

type yamlPipelinesSpec struct {
	Version    int                      `yaml:"version"`
	Operations map[string]yamlOperation `yaml:"operations"`
}

type yamlOperation struct {
	Steps []string `yaml:"steps"`
}

// Spec holds the configured step order per operation.
type Spec struct {
	orders map[string][]string
}

// Order returns the configured order for operation, or nil when none is set.
func (s *Spec) Order(operation string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.orders[operation]...)
}

var (
	specOnce  sync.Once
	specCache *Spec
	specErr   error
)

// LoadSpec reads the pipeline spec once per process, from the file named by
// CONTENT_PIPELINES_YAML or the embedded default. It returns nil when the
// document cannot be used, in which case pipelines keep their coded order.
func LoadSpec(log *logger.Logger) *Spec {
	specOnce.Do(func() {
		var data []byte
		data, specErr = readPipelinesSpec()
		if specErr == nil {
			specCache, specErr = ParseSpec(data)
		}
	})
	if specErr != nil {
		if log != nil {
			log.Warn("content pipelines: spec load failed; using coded order", "error", specErr)
		}
		return nil
	}
	return specCache
}

func ParseSpec(data []byte) (*Spec, error) {
	var raw yamlPipelinesSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := validatePipelinesSpec(&raw); err != nil {
		return nil, err
	}
	orders := make(map[string][]string, len(raw.Operations))
	for name, op := range raw.Operations {
		steps := make([]string, 0, len(op.Steps))
		for _, st := range op.Steps {
			steps = append(steps, strings.TrimSpace(st))
		}
		orders[strings.TrimSpace(name)] = steps
	}
	return &Spec{orders: orders}, nil
}

func readPipelinesSpec() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(pipelinesEnv)); path != "" {
		return os.ReadFile(path)
	}
	return pipelinesFS.ReadFile("pipelines.yaml")
}

func validatePipelinesSpec(spec *yamlPipelinesSpec) error {
	if spec == nil {
		return errors.New("missing spec")
	}
	if spec.Version != 1 {
		return fmt.Errorf("unsupported version: %d", spec.Version)
	}
	if len(spec.Operations) == 0 {
		return errors.New("no operations defined")
	}
	for name, op := range spec.Operations {
		if strings.TrimSpace(name) == "" {
			return errors.New("operation name is required")
		}
		if len(op.Steps) == 0 {
			return fmt.Errorf("operation %s: no steps", name)
		}
		seen := map[string]bool{}
		for _, st := range op.Steps {
			st = strings.TrimSpace(st)
			if st == "" {
				return fmt.Errorf("operation %s: empty step name", name)
			}
			if seen[st] {
				return fmt.Errorf("operation %s: duplicate step %s", name, st)
			}
			seen[st] = true
		}
	}
	return nil
}
