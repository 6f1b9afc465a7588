package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadPack loads and parses a single definition-pack file
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack file %s: %w", path, err)
	}
	pack, err := ParsePackYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pack file %s: %w", path, err)
	}
	return pack, nil
}

// LoadPackDir loads every *.yaml/*.yml pack in a directory, in lexical
// order. Any malformed pack fails the whole load; no partial result is
// returned.
func LoadPackDir(dir string) ([]*Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no pack files found in %s", dir)
	}

	packs := make([]*Pack, 0, len(names))
	seen := make(map[string]string)
	for _, name := range names {
		pack, err := LoadPack(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for _, def := range pack.Definitions {
			if prev, dup := seen[def.ID]; dup {
				return nil, fmt.Errorf("definition %s in %s already defined in %s", def.ID, name, prev)
			}
			seen[def.ID] = name
		}
		packs = append(packs, pack)
	}

	return packs, nil
}

// validatePack performs structural validation on a parsed pack
func validatePack(pack *Pack) error {
	if len(pack.Definitions) == 0 {
		return fmt.Errorf("at least one definition must be defined")
	}

	defIDs := make(map[string]bool)
	for i := range pack.Definitions {
		def := &pack.Definitions[i]
		if def.ID == "" {
			return fmt.Errorf("definition id cannot be empty")
		}
		if defIDs[def.ID] {
			return fmt.Errorf("duplicate definition id: %s", def.ID)
		}
		defIDs[def.ID] = true

		if err := validateDefinition(def); err != nil {
			return fmt.Errorf("definition %s: %w", def.ID, err)
		}
	}

	return nil
}

// validateDefinition validates one definition
func validateDefinition(def *Definition) error {
	if def.Type == "" {
		return fmt.Errorf("type cannot be empty")
	}
	if def.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds cannot be negative, got %f", def.CooldownSeconds)
	}

	nodeIDs := make(map[string]bool)
	for i := range def.Nodes {
		node := &def.Nodes[i]
		if node.ID == "" {
			return fmt.Errorf("node id cannot be empty")
		}
		if nodeIDs[node.ID] {
			return fmt.Errorf("duplicate node id: %s", node.ID)
		}
		nodeIDs[node.ID] = true

		if node.Kind == "" {
			return fmt.Errorf("node %s: kind cannot be empty", node.ID)
		}
		if node.Mutate != nil {
			if err := validateMutation(node.Mutate); err != nil {
				return fmt.Errorf("node %s: %w", node.ID, err)
			}
		}
	}

	// Edge and child references must resolve inside the definition
	for _, child := range def.Children {
		if !nodeIDs[child] {
			return fmt.Errorf("child %s does not exist", child)
		}
	}
	for i := range def.Nodes {
		node := &def.Nodes[i]
		if node.Next != "" && !nodeIDs[node.Next] {
			return fmt.Errorf("node %s: next target %s does not exist", node.ID, node.Next)
		}
		if node.Failed != "" && !nodeIDs[node.Failed] {
			return fmt.Errorf("node %s: failed target %s does not exist", node.ID, node.Failed)
		}
	}

	return nil
}

// validateMutation validates a leaf mutation spec
func validateMutation(m *Mutation) error {
	switch m.Action {
	case MutateGiveItem, MutateTakeItem:
		if m.Item == "" {
			return fmt.Errorf("mutation %s requires an item", m.Action)
		}
		if m.Count < 0 {
			return fmt.Errorf("mutation count cannot be negative, got %d", m.Count)
		}
	case MutateSetTag, MutateClearTag:
		if m.Tag == "" {
			return fmt.Errorf("mutation %s requires a tag", m.Action)
		}
	case "":
		return fmt.Errorf("mutation action cannot be empty")
	default:
		return fmt.Errorf("unknown mutation action: %s", m.Action)
	}
	return nil
}
