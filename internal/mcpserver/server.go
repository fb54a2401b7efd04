// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes order list tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/orderlist/internal/itemservice"
	"github.com/starford/orderlist/internal/models"
	"github.com/starford/orderlist/internal/storage"
)

const iconsURI = "orderlist://icons"

// IconLister reports the selectable icon ids in presentation order.
type IconLister interface {
	IDs() []string
}

// Server wraps the MCP server with order list tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *itemservice.Service
	icons IconLister
	store storage.Provider
}

// New creates a new MCP server with all tools registered. store may be nil,
// in which case exports are composed but not saved.
func New(svc *itemservice.Service, icons IconLister, store storage.Provider) *Server {
	s := &Server{svc: svc, icons: icons, store: store}

	s.mcp = server.NewMCPServer(
		"Orderlist",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_item",
		mcp.WithDescription("Append an item to the order list. "+
			"Read the contract first via get_item_contract or the orderlist://item-format resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Item name (non-empty)")),
		mcp.WithNumber("quantity", mcp.Required(), mcp.Min(1), mcp.Description("Quantity, 1 or greater")),
		mcp.WithString("icon", mcp.Required(), mcp.Description("Icon id from list_icons")),
	), s.addItem)

	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Remove an item from the order list by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id returned by add_item or list_items")),
	), s.removeItem)

	s.mcp.AddTool(mcp.NewTool("get_item",
		mcp.WithDescription("Fetch one order list item by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id returned by add_item or list_items")),
	), s.getItem)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List the order list items in insertion order."),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("list_icons",
		mcp.WithDescription("List the selectable icon ids."),
	), s.listIcons)

	s.mcp.AddTool(mcp.NewTool("export_items",
		mcp.WithDescription("Generate the order list PDF and report a summary."),
	), s.exportItems)

	s.mcp.AddTool(mcp.NewTool("list_exports",
		mcp.WithDescription("List previously saved PDF documents."),
	), s.listExports)

	s.mcp.AddTool(mcp.NewTool("delete_export",
		mcp.WithDescription("Delete a saved PDF document by file name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("File name from list_exports")),
	), s.deleteExport)

	s.mcp.AddTool(mcp.NewTool("get_item_contract",
		mcp.WithDescription("Returns the rules items must satisfy. Call this before adding items."),
	), s.getItemContract)

	s.mcp.AddResource(
		mcp.NewResource(iconsURI, "Icon Catalog",
			mcp.WithResourceDescription("Selectable icon ids in presentation order."),
			mcp.WithMIMEType("application/json"),
		),
		s.readIconsResource,
	)

	s.mcp.AddResource(
		mcp.NewResource("orderlist://item-format", "Item Contract",
			mcp.WithResourceDescription("Rules every order list item must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	qty, err := req.RequireInt("quantity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	icon := req.GetString("icon", "")

	item, err := s.svc.RequestAdd(ctx, models.Candidate{Name: name, Quantity: qty, IconID: icon})
	if err != nil {
		return mcp.NewToolResultError(itemservice.MessageFor(err)), nil
	}
	out, _ := json.MarshalIndent(item, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) removeItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RequestRemove(ctx, id); err != nil {
		return mcp.NewToolResultError(itemservice.MessageFor(err)), nil
	}
	return mcp.NewToolResultText("removed: " + id), nil
}

func (s *Server) getItem(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.svc.Item(id)
	if err != nil {
		return mcp.NewToolResultError(itemservice.MessageFor(err)), nil
	}
	out, _ := json.MarshalIndent(item, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listItems(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := s.svc.Items()
	if len(items) == 0 {
		return mcp.NewToolResultText("no items"), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listIcons(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.icons.IDs(), "\n")), nil
}

type exportSummary struct {
	Filename  string   `json:"filename"`
	Pages     int      `json:"pages"`
	Bytes     int      `json:"bytes"`
	Checksum  string   `json:"checksum"`
	Rows      []string `json:"rows"`
	SavedPath string   `json:"savedPath,omitempty"`
}

func (s *Server) exportItems(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	art, err := s.svc.Export(ctx)
	if err != nil {
		return mcp.NewToolResultError(itemservice.MessageFor(err)), nil
	}
	sum := exportSummary{
		Filename: art.Filename,
		Pages:    art.Pages,
		Bytes:    len(art.Data),
		Checksum: art.Checksum,
		Rows:     art.Rows,
	}
	if s.store != nil {
		if err := s.store.Write(art.Filename, art.Data); err != nil {
			slog.Error("save export failed", slog.String("error", err.Error()))
			return mcp.NewToolResultError("failed to save " + art.Filename), nil
		}
		sum.SavedPath = art.Filename
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listExports(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no export directory configured"), nil
	}
	files, err := s.store.List("")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("no exports"), nil
	}
	out, _ := json.MarshalIndent(files, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteExport(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no export directory configured"), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !strings.EqualFold(path.Ext(name), ".pdf") {
		return mcp.NewToolResultError("not a PDF document: " + name), nil
	}
	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mcp.NewToolResultError("no such export: " + name), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("deleted: " + name), nil
}

func (s *Server) getItemContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ItemContract), nil
}

func (s *Server) readIconsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.Marshal(s.icons.IDs())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      iconsURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "orderlist://item-format",
			MIMEType: "text/markdown",
			Text:     ItemContract,
		},
	}, nil
}
