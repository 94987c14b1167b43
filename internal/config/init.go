package config

import (
	"fmt"
	"os"
)

const starterConfig = `# schemabuild configuration
source:
  dir: ./schema
  # include:
  #   - "*.schema.yaml"
  # git:
  #   url: https://git.example.com/product/product.git
  #   branch: main
  #   path: docs/schema

output:
  artifact: data/schema.json
  examples_dir: data/examples

build:
  fail_fast: false

# watch:
#   debounce: 500ms
#   interval: 10m
#   metrics_addr: ":9090"
#   nats:
#     enabled: true
#     url: nats://localhost:4222
#     subject: schemabuild.builds

logging:
  level: info
  format: text

history:
  enabled: true
  path: .schemabuild/history.db
  keep: 100
`

// Init writes a starter configuration file. It refuses to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}
	return nil
}
