package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skisplace/epoxyview/internal/api"
)

// registerTools wires the three pipeline tools.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_styles",
			mcp.WithDescription("List the public finish-style catalog, optionally filtered by category"),
			mcp.WithString("category",
				mcp.Description("Finish system category to filter by (e.g. Flake, Solid)"),
			),
		),
		s.handleListStyles,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("upload_image",
			mcp.WithDescription("Upload a local photo and return the server-issued image id"),
			mcp.WithString("path", mcp.Required(),
				mcp.Description("Path to the image file"),
			),
		),
		s.handleUploadImage,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("render_preview",
			mcp.WithDescription("Submit a render request for an uploaded image and return the result URLs"),
			mcp.WithString("image_id", mcp.Required(),
				mcp.Description("Server image id from upload_image"),
			),
			mcp.WithString("style_id",
				mcp.Description("Style id from list_styles"),
			),
			mcp.WithNumber("blend_strength",
				mcp.Description("Blend strength in [0.3, 1.0], default 0.85"),
			),
			mcp.WithString("finish",
				mcp.Description("Surface finish: gloss, satin, or matte (default satin)"),
			),
			mcp.WithString("mask_path",
				mcp.Description("Optional path to a PNG inclusion mask to apply"),
			),
		),
		s.handleRenderPreview,
	)
}

func (s *Server) handleListStyles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	styles, err := s.gw.Styles(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching styles: %v", err)), nil
	}

	category := ""
	if args := request.GetArguments(); args != nil {
		category, _ = args["category"].(string)
	}
	if category != "" {
		filtered := styles[:0]
		for _, st := range styles {
			if st.Category == category {
				filtered = append(filtered, st)
			}
		}
		styles = filtered
	}

	out, err := json.MarshalIndent(styles, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding styles: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleUploadImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("missing or invalid 'path' parameter"), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("opening image: %v", err)), nil
	}
	defer func() { _ = f.Close() }()

	id, err := s.gw.Upload(ctx, path, f)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("uploading image: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"image_id": %q}`, id)), nil
}

func (s *Server) handleRenderPreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	imageID, ok := args["image_id"].(string)
	if !ok || imageID == "" {
		return mcp.NewToolResultError("missing or invalid 'image_id' parameter"), nil
	}

	req := api.PreviewRequest{
		ImageID:       imageID,
		BlendStrength: 0.85,
		Finish:        "satin",
		Debug:         s.debug,
		ProjectID:     s.projectID,
	}
	if v, ok := args["style_id"].(string); ok {
		req.StyleID = v
	}
	if v, ok := args["blend_strength"].(float64); ok {
		req.BlendStrength = v
	}
	if v, ok := args["finish"].(string); ok && v != "" {
		req.Finish = v
	}
	if maskPath, ok := args["mask_path"].(string); ok && maskPath != "" {
		data, err := os.ReadFile(maskPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reading mask: %v", err)), nil
		}
		req.CustomMask = base64.StdEncoding.EncodeToString(data)
	}

	res, err := s.gw.Preview(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering preview: %v", err)), nil
	}

	out, err := json.MarshalIndent(map[string]string{
		"result_url":  res.ResultURL,
		"mask_url":    res.MaskURL,
		"mask_source": res.MaskSource,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
