package viewerctl

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"viewerd/pkg/types"
)

// BuildRootCmd constructs the Cobra command tree for viewerctl.
func BuildRootCmd() *cobra.Command {
	addr := "http://127.0.0.1:8080"
	if v := os.Getenv("VIEWERD_ADDR"); v != "" {
		addr = v
	}

	var client *Client
	root := &cobra.Command{
		Use:           "viewerctl",
		Short:         "Control a running viewerd instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("addr", addr, "Base URL of the viewerd server (defaults VIEWERD_ADDR)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		base, _ := cmd.Flags().GetString("addr")
		client = NewClient(base)
	}

	studiesCmd := &cobra.Command{Use: "studies", Short: "List available studies", RunE: func(cmd *cobra.Command, args []string) error {
		var out types.StudiesResponse
		if err := client.getJSON("/studies", &out); err != nil {
			return err
		}
		return printJSON(cmd, out)
	}}

	statusCmd := &cobra.Command{Use: "status", Short: "Show viewport states", RunE: func(cmd *cobra.Command, args []string) error {
		var out types.StatusResponse
		if err := client.getJSON("/status", &out); err != nil {
			return err
		}
		return printJSON(cmd, out)
	}}

	sessionCmd := &cobra.Command{Use: "session", Short: "Dump persisted session state", RunE: func(cmd *cobra.Command, args []string) error {
		var out types.SessionResponse
		if err := client.getJSON("/session", &out); err != nil {
			return err
		}
		return printJSON(cmd, out)
	}}

	bindCmd := &cobra.Command{
		Use:     "bind <viewport> <study-uid> <series-uid>",
		Short:   "Bind a series to a viewport and start loading",
		Example: "  viewerctl bind 0 1.2.840.1 1.2.840.1.1 --start 5",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := parseViewport(args[0])
			if err != nil {
				return err
			}
			start, _ := cmd.Flags().GetInt("start")
			req := types.BindRequest{StudyUID: args[1], SeriesUID: args[2], StartIndex: start}
			var out types.ViewportStatus
			if err := client.postJSON(viewportPath(vp, "bind"), req, &out); err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	bindCmd.Flags().Int("start", 0, "Initial image index within the stack")

	unbindCmd := &cobra.Command{Use: "unbind <viewport>", Short: "Clear a viewport", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		vp, err := parseViewport(args[0])
		if err != nil {
			return err
		}
		return client.delete("/viewports/" + strconv.Itoa(vp))
	}}

	activateCmd := &cobra.Command{Use: "activate <viewport>", Short: "Make a viewport the active one", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		vp, err := parseViewport(args[0])
		if err != nil {
			return err
		}
		return client.postJSON(viewportPath(vp, "activate"), struct{}{}, nil)
	}}

	navigateCmd := &cobra.Command{
		Use:   "navigate <viewport> <image-id>",
		Short: "Move a viewport's cursor to an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := parseViewport(args[0])
			if err != nil {
				return err
			}
			body := map[string]string{"image_id": args[1]}
			var out types.ViewportStatus
			if err := client.postJSON(viewportPath(vp, "navigate"), body, &out); err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}

	progressCmd := &cobra.Command{
		Use:   "progress <image-id> <percent>",
		Short: "Broadcast a fetch-progress event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.Atoi(args[1])
			if err != nil || pct < 0 || pct > 100 {
				return fmt.Errorf("percent must be 0-100, got %q", args[1])
			}
			var out types.ProgressResponse
			if err := client.postJSON("/progress", types.ProgressRequest{ImageID: args[0], Percent: pct}, &out); err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}

	root.AddCommand(studiesCmd, statusCmd, sessionCmd, bindCmd, unbindCmd, activateCmd, navigateCmd, progressCmd)

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	root.AddCommand(completionCmd)

	return root
}

func parseViewport(s string) (int, error) {
	vp, err := strconv.Atoi(s)
	if err != nil || vp < 0 {
		return 0, fmt.Errorf("viewport must be a non-negative integer, got %q", s)
	}
	return vp, nil
}

func viewportPath(vp int, op string) string {
	return "/viewports/" + strconv.Itoa(vp) + "/" + op
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
