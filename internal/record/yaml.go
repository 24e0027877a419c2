package record

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLFile keeps a YAML document as a node tree so that comments and key
// order written by an operator survive a Save.
type YAMLFile struct {
	path string
	doc  *yaml.Node
}

// OpenYAMLFile reads path. A missing file is an empty document; it is created
// on the first Save.
func OpenYAMLFile(path string) (*YAMLFile, error) {
	if path == "" {
		return nil, fmt.Errorf("yaml record path is empty")
	}
	f := &YAMLFile{path: path}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *YAMLFile) Reload() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.doc = emptyDocument()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		f.doc = emptyDocument()
		return nil
	}
	if doc.Kind != yaml.DocumentNode || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parse %s: top level must be a mapping", f.path)
	}
	f.doc = &doc
	return nil
}

func (f *YAMLFile) Contains(key string) bool {
	_, ok := f.Get(key)
	return ok
}

func (f *YAMLFile) Get(key string) (string, bool) {
	node := f.root()
	for _, part := range strings.Split(key, ".") {
		node = child(node, part)
		if node == nil {
			return "", false
		}
	}
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return "", false
	}
	return node.Value, true
}

func (f *YAMLFile) Set(key, value string) {
	parts := strings.Split(key, ".")
	node := f.root()
	for _, part := range parts[:len(parts)-1] {
		next := child(node, part)
		if next == nil || next.Kind != yaml.MappingNode {
			next = setChild(node, part, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
		}
		node = next
	}
	setChild(node, parts[len(parts)-1], scalar(value))
}

// Save writes the document through a temp file and rename so a crash never
// leaves a truncated record behind.
func (f *YAMLFile) Save() error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.doc); err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	return nil
}

func (f *YAMLFile) Close() error { return nil }

func (f *YAMLFile) root() *yaml.Node {
	if f.doc == nil {
		f.doc = emptyDocument()
	}
	return f.doc.Content[0]
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}

func child(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func setChild(mapping *yaml.Node, key string, value *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			// keep comments attached to the old value
			value.HeadComment = mapping.Content[i+1].HeadComment
			value.LineComment = mapping.Content[i+1].LineComment
			mapping.Content[i+1] = value
			return value
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
	return value
}

// scalar leaves numbers untagged so they are written plain, and tags
// everything else as a string so a world named "123" or "true" round-trips.
func scalar(value string) *yaml.Node {
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
