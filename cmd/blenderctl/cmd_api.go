package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"blenderctl/internal/apiquery"
	"blenderctl/internal/bpy"
)

var (
	apiSearch        string
	apiInDescription bool
	apiOperator      string
	apiModule        string
	apiModules       bool
	apiType          string
	apiTypes         bool
	apiData          bool
	apiContext       bool
	apiJSON          bool
	apiLimit         int
)

var apiCmd = &cobra.Command{
	Use:   "api [flags]",
	Short: "Introspect the live bpy API of the installed Blender",
	Long: `Queries the running Blender's Python API directly, so results always
match the installed version rather than a static reference.

Examples:
  blenderctl api                                    # summary
  blenderctl api --search "export gltf"             # operator search
  blenderctl api --search animation --in-description
  blenderctl api --operator bpy.ops.export_scene.gltf
  blenderctl api --module export_scene
  blenderctl api --search Mesh --types
  blenderctl api --type bpy.types.Mesh
  blenderctl api --data
  blenderctl api --context`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiSearch, "search", "s", "", "Search query")
	apiCmd.Flags().BoolVarP(&apiInDescription, "in-description", "d", false, "Also match operator descriptions")
	apiCmd.Flags().StringVarP(&apiOperator, "operator", "o", "", "Full detail for an operator path")
	apiCmd.Flags().StringVarP(&apiModule, "module", "m", "", "List operators in a bpy.ops module")
	apiCmd.Flags().BoolVar(&apiModules, "modules", false, "List all operator modules")
	apiCmd.Flags().StringVarP(&apiType, "type", "t", "", "Full detail for a bpy.types path")
	apiCmd.Flags().BoolVar(&apiTypes, "types", false, "Search types instead of operators")
	apiCmd.Flags().BoolVar(&apiData, "data", false, "List bpy.data collections")
	apiCmd.Flags().BoolVar(&apiContext, "context", false, "List bpy.context attributes")
	apiCmd.Flags().BoolVarP(&apiJSON, "json", "j", false, "Output as JSON")
	apiCmd.Flags().IntVarP(&apiLimit, "limit", "l", apiquery.DefaultLimit, "Max results")
	rootCmd.AddCommand(apiCmd)
}

// buildAPIRequest maps the flag combination onto one payload mode,
// mirroring the precedence of the flags' help order.
func buildAPIRequest() apiquery.Request {
	req := apiquery.Request{Limit: apiLimit}

	switch {
	case apiOperator != "":
		req.Mode = apiquery.ModeOperator
		req.Target = apiOperator
	case apiModule != "":
		req.Mode = apiquery.ModeModule
		req.Target = apiModule
	case apiModules:
		req.Mode = apiquery.ModeModules
	case apiType != "":
		req.Mode = apiquery.ModeType
		req.Target = apiType
	case apiSearch != "" && apiTypes:
		req.Mode = apiquery.ModeTypes
		req.Query = apiSearch
	case apiSearch != "":
		req.Mode = apiquery.ModeSearch
		req.Query = apiSearch
		req.InDescription = apiInDescription
	case apiData:
		req.Mode = apiquery.ModeData
	case apiContext:
		req.Mode = apiquery.ModeContext
	default:
		req.Mode = apiquery.ModeSummary
	}
	return req
}

func runAPI(cmd *cobra.Command, args []string) error {
	req := buildAPIRequest()
	if err := req.Validate(); err != nil {
		return err
	}

	runner, err := newRunner()
	if err != nil {
		return err
	}
	extra, err := baseExtraArgs()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	var resp apiquery.Response
	if _, err := bpy.Exec(ctx, runner, bpy.ExecSpec{
		Payload:   bpy.PayloadAPIQuery,
		Options:   req,
		ExtraArgs: extra,
	}, &resp); err != nil {
		return err
	}

	if apiJSON {
		data, err := json.MarshalIndent(&resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode api response: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(apiquery.Render(req, &resp))
	return nil
}
