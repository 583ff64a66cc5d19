package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/mudler/fsformats/pkg/formats"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type typeInfo struct {
	Name            string   `json:"name" yaml:"name"`
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Labeling        bool     `json:"labeling" yaml:"labeling"`
	LabelReadable   bool     `json:"label_readable" yaml:"label_readable"`
	LabelUnsettable bool     `json:"label_unsettable" yaml:"label_unsettable"`
	Formattable     bool     `json:"formattable" yaml:"formattable"`
	MaxLabelLength  int      `json:"max_label_length,omitempty" yaml:"max_label_length,omitempty"`
	LabelTool       string   `json:"label_tool,omitempty" yaml:"label_tool,omitempty"`
	LabelShape      string   `json:"label_shape,omitempty" yaml:"label_shape,omitempty"`
	ReadTool        string   `json:"read_tool,omitempty" yaml:"read_tool,omitempty"`
	MkfsTool        string   `json:"mkfs_tool,omitempty" yaml:"mkfs_tool,omitempty"`
	UUIDTool        string   `json:"uuid_tool,omitempty" yaml:"uuid_tool,omitempty"`
}

func describe(v formats.Variant) typeInfo {
	t := typeInfo{
		Name:            v.Name,
		Aliases:         v.Aliases,
		Labeling:        v.Labeling(),
		LabelReadable:   v.LabelReadable(),
		LabelUnsettable: v.LabelUnsettable(),
		Formattable:     v.Formattable(),
	}
	if v.LabelRule != nil {
		t.MaxLabelLength = v.LabelRule.MaxLength
	}
	if v.SetLabel != nil {
		t.LabelTool = v.SetLabel.Tool
		t.LabelShape = v.SetLabel.Shape.String()
	}
	if v.ReadLabel != nil {
		t.ReadTool = v.ReadLabel.Tool
	}
	if v.Mkfs != nil {
		t.MkfsTool = v.Mkfs.Tool
	}
	if v.WriteUUID != nil {
		t.UUIDTool = v.WriteUUID.Tool
	}
	return t
}

func listTypes() []typeInfo {
	res := []typeInfo{}
	for _, name := range formats.Types() {
		v, _ := formats.Lookup(name)
		res = append(res, describe(v))
	}
	return res
}

// query runs a jq expression over the JSON form of data.
func query(w io.Writer, q string, data interface{}) error {
	parsed, err := gojq.Parse(q)
	if err != nil {
		return errors.Wrapf(err, "parsing query %q", q)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var input interface{}
	if err := json.Unmarshal(b, &input); err != nil {
		return err
	}

	iter := parsed.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			return err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	}
}

func printTypes(w io.Writer, output string, types []typeInfo) error {
	switch output {
	case "json":
		b, err := json.MarshalIndent(types, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	case "yaml":
		b, err := yaml.Marshal(types)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(b))
	case "text", "":
		for _, t := range types {
			caps := []string{}
			if t.Labeling {
				caps = append(caps, fmt.Sprintf("label<=%d (%s %s)", t.MaxLabelLength, t.LabelTool, t.LabelShape))
			}
			if t.LabelReadable {
				caps = append(caps, "readable")
			}
			if t.LabelUnsettable {
				caps = append(caps, "unsettable")
			}
			if t.Formattable {
				caps = append(caps, "mkfs="+t.MkfsTool)
			}
			fmt.Fprintf(w, "%-10s %s\n", t.Name, strings.Join(caps, " "))
		}
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported filesystem types and their capabilities",
	Example: `fsformats list -o json
fsformats list -q '.[] | select(.label_readable) | .name'`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		q, _ := cmd.Flags().GetString("query")
		types := listTypes()
		if q != "" {
			checkErr(query(cmd.OutOrStdout(), q, types))
			return
		}
		checkErr(printTypes(cmd.OutOrStdout(), output, types))
	},
}

func init() {
	listCmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	listCmd.Flags().StringP("query", "q", "", "jq query over the json listing")
	rootCmd.AddCommand(listCmd)
}
