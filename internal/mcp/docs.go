package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `todos keeps a private list of short text items for the authenticated user.

- list_todos returns your items, newest first, with a version that grows after every change.
- create_todo, update_todo and delete_todo always answer {"ok": true}. They never report
  whether anything changed; call list_todos afterwards to see the authoritative list.
- Records are only visible to their owner. Ids of other users' items behave like unknown ids.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "todos://docs/contract",
		Name:        "contract",
		Title:       "Mutation contract",
		Description: "How mutations report (or do not report) their result",
		Content: `# Mutation contract

Every mutation is owner-scoped and silent:

- no identity: nothing happens
- missing title, empty newTitle or non-integer id: nothing happens
- id missing or owned by someone else: nothing happens
- store unavailable: nothing happens (logged on the server)

Refetch the list to observe the effect.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
