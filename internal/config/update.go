package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rileyhilliard/rstat/internal/errors"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# rstat config. See 'rstat init --help'.\n"

// fileConfig mirrors Config with durations as strings, so the written file
// reads "2.5s" rather than nanoseconds.
type fileConfig struct {
	Version    int             `yaml:"version"`
	Default    string          `yaml:"default,omitempty"`
	Poll       filePoll        `yaml:"poll"`
	Connection fileConnection  `yaml:"connection"`
	Hosts      map[string]Host `yaml:"hosts,omitempty"`
}

type filePoll struct {
	Interval     string `yaml:"interval"`
	Top          int    `yaml:"top"`
	ProbeFailure string `yaml:"probe_failure"`
}

type fileConnection struct {
	ReadyTimeout          string `yaml:"ready_timeout"`
	Compress              bool   `yaml:"compress"`
	AgentForward          bool   `yaml:"agent_forward"`
	StrictHostKeyChecking bool   `yaml:"strict_host_key_checking"`
	AgentSocket           string `yaml:"agent_socket,omitempty"`
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Version: cfg.Version,
		Default: cfg.Default,
		Poll: filePoll{
			Interval:     cfg.Poll.Interval.String(),
			Top:          cfg.Poll.Top,
			ProbeFailure: cfg.Poll.ProbeFailure,
		},
		Connection: fileConnection{
			ReadyTimeout:          cfg.Connection.ReadyTimeout.String(),
			Compress:              cfg.Connection.Compress,
			AgentForward:          cfg.Connection.AgentForward,
			StrictHostKeyChecking: cfg.Connection.StrictHostKeyChecking,
			AgentSocket:           cfg.Connection.AgentSocket,
		},
		Hosts: cfg.Hosts,
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves cfg to path, creating parent directories. It refuses to
// replace an existing file unless overwrite is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config already exists at %s", path),
				"Use --force to overwrite it, or 'rstat hosts add' to add a host")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render config", "")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't create %s", filepath.Dir(path)),
			"Check directory permissions")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write %s", path),
			"Check file permissions")
	}
	return nil
}

// AddHost adds a host entry to an existing config file. It edits the YAML
// tree in place so comments and ordering survive.
func AddHost(configPath, name string, host Host) error {
	name = NormalizeName(name)
	if err := validateHost(name, host); err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Run 'rstat init' to create one")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file",
			"Check the YAML syntax in "+configPath)
	}

	// An empty file decodes to a zero node; start a fresh document.
	if root.Kind == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Expected a mapping at the top of the config file",
			"Check the YAML structure in "+configPath)
	}
	doc := root.Content[0]

	hostsNode := findMapValue(doc, "hosts")
	if hostsNode == nil || hostsNode.Kind != yaml.MappingNode {
		// "hosts:" with no value decodes to a null scalar.
		newHosts := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if hostsNode != nil {
			*hostsNode = *newHosts
		} else {
			doc.Content = append(doc.Content, scalar("hosts"), newHosts)
		}
		hostsNode = findMapValue(doc, "hosts")
	}

	if hasHostName(hostsNode, name) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Host '%s' already exists in %s", name, configPath),
			"Pick a different name or edit the file directly")
	}

	entry := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	entry.Content = append(entry.Content, scalar("ssh"), scalar(host.SSH))
	if host.User != "" {
		entry.Content = append(entry.Content, scalar("user"), scalar(host.User))
	}
	if host.Port != 0 {
		entry.Content = append(entry.Content, scalar("port"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(host.Port)})
	}
	if host.KeyPath != "" {
		entry.Content = append(entry.Content, scalar("key_path"), scalar(host.KeyPath))
	}
	hostsNode.Content = append(hostsNode.Content, scalar(name), entry)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	enc.Close()

	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write %s", configPath),
			"Check file permissions")
	}
	return nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
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

// hasHostName reports whether hosts already holds name in any letter case.
func hasHostName(hosts *yaml.Node, name string) bool {
	for i := 0; i < len(hosts.Content)-1; i += 2 {
		if NormalizeName(hosts.Content[i].Value) == name {
			return true
		}
	}
	return false
}
