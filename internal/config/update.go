package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# asuswrt configuration. Passwords are better kept in ASUSWRT_PASSWORD.\n"

// Write renders cfg as YAML at path, creating parent directories. The file
// is private to the user because it may hold credentials.
func Write(path string, cfg *Config) error {
	var buf strings.Builder
	buf.WriteString(fileHeader)

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	return writePrivate(path, buf.String())
}

// AddRouter adds or replaces the router called name in an existing config
// file. It edits the YAML tree so comments and the order of other keys
// survive. With makeDefault, "default" is pointed at the new router.
func AddRouter(configPath, name string, router Router, makeDefault bool) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	var routerNode yaml.Node
	if err := routerNode.Encode(router); err != nil {
		return fmt.Errorf("failed to encode router: %w", err)
	}

	routersNode := findMapValue(docNode, "routers")
	if routersNode == nil || routersNode.Kind != yaml.MappingNode {
		routersNode = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		setMapValue(docNode, "routers", routersNode)
	}
	setMapValue(routersNode, name, &routerNode)

	if makeDefault {
		setMapValue(docNode, "default", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	return writePrivate(configPath, buf.String())
}

func writePrivate(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

// setMapValue replaces the value under key, appending the pair when absent.
func setMapValue(node *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Kind == yaml.ScalarNode && node.Content[i].Value == key {
			node.Content[i+1] = value
			return
		}
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value)
}
