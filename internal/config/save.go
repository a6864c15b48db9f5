package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveRegistry updates the registry section in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveRegistry(configPath string, reg RegistryConfig) error {
	node, err := buildRegistryNode(reg)
	if err != nil {
		return fmt.Errorf("building registry node: %w", err)
	}
	return saveSection(configPath, "registry", node)
}

// SaveLedgerPath updates the ledger section in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveLedgerPath(configPath string, path string) error {
	node, err := buildLedgerNode(LedgerConfig{Path: path})
	if err != nil {
		return fmt.Errorf("building ledger node: %w", err)
	}
	return saveSection(configPath, "ledger", node)
}

// saveSection replaces (or appends) one top-level mapping key in the config
// file, preserving everything else including comments.
func saveSection(configPath, key string, value *yaml.Node) error {
	// Read existing file content
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	// Update or create the section
	if doc.Kind == 0 {
		// Empty or new file - create document structure
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: key},
						value,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind == yaml.MappingNode {
			// Find and replace the key, or append it
			found := false
			for i := 0; i < len(root.Content)-1; i += 2 {
				if root.Content[i].Value == key {
					root.Content[i+1] = value
					found = true
					break
				}
			}
			if !found {
				root.Content = append(root.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: key},
					value,
				)
			}
		}
	}

	// Marshal back to YAML
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes data to path via a temp file and rename so readers
// never observe a partial config.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".curio.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func buildRegistryNode(reg RegistryConfig) (*yaml.Node, error) {
	return marshalToNode(map[string]string{
		"name":   reg.Name,
		"symbol": reg.Symbol,
	})
}

func buildLedgerNode(ledger LedgerConfig) (*yaml.Node, error) {
	return marshalToNode(map[string]string{
		"path": ledger.Path,
	})
}

// marshalToNode round-trips a value through the YAML encoder to produce a
// mapping node with deterministic key order.
func marshalToNode(value any) (*yaml.Node, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("unexpected yaml structure")
	}

	return doc.Content[0], nil
}
