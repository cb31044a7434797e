package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/hierarchy"
	"github.com/VoxDroid/dopesheet/internal/ranges"
	"github.com/VoxDroid/dopesheet/internal/scene"
)

// inspectRow is one displayed dope sheet row, flattened for printing.
type inspectRow struct {
	path  string
	depth int
	desc  string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <scene>",
	Short: "Print the dope sheet rows of a scene",
	Long:  "Print the dope sheet rows of a scene with clip ranges and key counts. Example:\n  dopesheet inspect shot010.yaml --filter blr",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		dims, _ := cmd.Flags().GetBool("dims")

		log, err := newLogger(false)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		f, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		sc, err := scene.FromFile(f, log.Named("scene"))
		if err != nil {
			return err
		}
		idx := hierarchy.New(sc, log.Named("hierarchy"), hierarchy.DefaultOptions())
		for _, id := range sc.Nodes() {
			idx.Insert(id)
		}
		if dims {
			for _, id := range idx.Nodes() {
				for _, p := range idx.Params(id) {
					if p.MultiDim() {
						idx.SetExpanded(hierarchy.ParamRef(id, p.ID), true)
					}
				}
			}
		}
		rc := ranges.New(sc, idx, log.Named("ranges"))

		rows := inspectRows(sc, idx, rc)
		out := cmd.OutOrStdout()
		if filter == "" {
			for _, r := range rows {
				fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", r.depth), r.desc)
			}
			return nil
		}
		printFuzzy(out, rows, filter)
		return nil
	},
}

func inspectRows(g anim.Graph, idx *hierarchy.Index, rc *ranges.Computer) []inspectRow {
	var out []inspectRow
	paths := map[anim.NodeID]string{}
	paramPaths := map[anim.ParamID]string{}
	for _, row := range idx.Rows() {
		id := row.Ref.Node
		switch row.Ref.Kind {
		case hierarchy.RowNode:
			p := string(id)
			if parent, ok := idx.Parent(id); ok {
				p = paths[parent] + "/" + p
			}
			paths[id] = p
			kind, _ := idx.Kind(id)
			desc := fmt.Sprintf("%s (%s)", id, kind)
			if l := g.Label(id); l != "" && l != string(id) {
				desc = fmt.Sprintf("%s %q (%s)", id, l, kind)
			}
			if ranges.HasRange(kind) {
				if r, ok := rc.Get(id); ok {
					desc += fmt.Sprintf(" [%g, %g]", r.Start, r.End)
				}
			}
			out = append(out, inspectRow{path: p, depth: row.Depth, desc: desc})
		case hierarchy.RowParam:
			name := string(row.Ref.Param)
			var keys int
			for _, p := range idx.Params(id) {
				if p.ID == row.Ref.Param {
					name = p.Name
					for d := 0; d < p.Dimensions; d++ {
						keys += len(g.Keyframes(p.ID, d))
					}
				}
			}
			paramPaths[row.Ref.Param] = paths[id] + "/" + name
			out = append(out, inspectRow{
				path:  paramPaths[row.Ref.Param],
				depth: row.Depth,
				desc:  fmt.Sprintf("%s: %d keys", name, keys),
			})
		case hierarchy.RowDim:
			keys := len(g.Keyframes(row.Ref.Param, row.Ref.Dim))
			out = append(out, inspectRow{
				path:  fmt.Sprintf("%s[%d]", paramPaths[row.Ref.Param], row.Ref.Dim),
				depth: row.Depth,
				desc:  fmt.Sprintf("[%d]: %d keys", row.Ref.Dim, keys),
			})
		}
	}
	return out
}

// printFuzzy prints the rows whose path matches pattern, best match first.
func printFuzzy(out io.Writer, rows []inspectRow, pattern string) {
	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.path
	}
	matches := fuzzy.Find(pattern, paths)
	if len(matches) == 0 {
		fmt.Fprintf(out, "no rows match %q\n", pattern)
		return
	}
	for _, m := range matches {
		fmt.Fprintf(out, "%s\t%s\n", m.Str, rows[m.Index].desc)
	}
}

func init() {
	inspectCmd.Flags().String("filter", "", "Fuzzy filter on row paths")
	inspectCmd.Flags().Bool("dims", false, "Expand multi-dimensional parameters into one row per dimension")
	rootCmd.AddCommand(inspectCmd)
}
