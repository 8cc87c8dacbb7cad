package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Rows []map[string]any `yaml:"rows"`
}

// decodeYAML adds the rows of a YAML data file. Each row needs an integer
// id; kind defaults to "row".
func decodeYAML(name string, data []byte, coll *collector) error {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	for i, fields := range f.Rows {
		id, ok := fields["id"].(int)
		if !ok {
			return fmt.Errorf("%s: row %d has no integer id", name, i+1)
		}
		kind, _ := fields["kind"].(string)
		coll.add(rawRow{id: id, kind: kind, file: name, fields: fields})
	}
	return nil
}
