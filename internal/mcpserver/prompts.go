package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const knowledgeCreationText = `I've attached information I'd like to incorporate into my Zettelkasten. Please:

First, search for existing notes that might be related before creating anything new.

Then, identify 3-5 key atomic ideas from this information and for each one:
1. Create a note with an appropriate title, type, and tags
2. Draft content in my own words with proper attribution
3. Find and create meaningful connections to existing notes
4. Update any relevant structure notes

After processing all ideas, provide a summary of the notes created, connections established, and any follow-up questions you have.`

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("knowledge-creation",
		mcp.WithPromptDescription("Guide for incorporating new information into your Zettelkasten"),
	), s.knowledgeCreationPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("knowledge-exploration",
		mcp.WithPromptDescription("Guide for exploring connections in your Zettelkasten"),
		mcp.WithArgument("topic", mcp.ArgumentDescription("Optional topic to focus the exploration on")),
	), s.knowledgeExplorationPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("knowledge-synthesis",
		mcp.WithPromptDescription("Guide for synthesizing insights from your Zettelkasten"),
		mcp.WithArgument("theme", mcp.ArgumentDescription("Optional theme to synthesize around")),
	), s.knowledgeSynthesisPrompt)
}

func (s *Server) knowledgeCreationPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Guide for incorporating new information into your Zettelkasten",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(knowledgeCreationText)),
		},
	), nil
}

func (s *Server) knowledgeExplorationPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topicText := ""
	if topic := req.Params.Arguments["topic"]; topic != "" {
		topicText = fmt.Sprintf(" about '%s'", topic)
	}
	text := fmt.Sprintf(`I'd like to explore my Zettelkasten%[1]s. Please help me:

1. Search for relevant notes%[1]s
2. Identify the most connected notes (central nodes)
3. Find clusters of related ideas
4. Discover unexpected connections between different domains
5. Identify gaps or orphaned notes that need integration

As we explore, suggest:
- New connections that could be made
- Structure notes that could organize these ideas
- Questions that might lead to deeper insights`, topicText)

	return mcp.NewGetPromptResult(
		"Guide for exploring connections in your Zettelkasten",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

func (s *Server) knowledgeSynthesisPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	themeText := ""
	if theme := req.Params.Arguments["theme"]; theme != "" {
		themeText = fmt.Sprintf(" around the theme '%s'", theme)
	}
	text := fmt.Sprintf(`I want to synthesize insights from my Zettelkasten%[1]s. Please:

1. Identify relevant notes and their connections%[1]s
2. Trace the evolution of ideas through linked notes
3. Find patterns and recurring themes
4. Identify contradictions or tensions between ideas
5. Suggest how these ideas might combine into new insights

Help me create a structure note or synthesis that:
- Captures the key insights
- Shows how ideas relate and build on each other
- Identifies open questions or areas for further development
- Links back to the source notes`, themeText)

	return mcp.NewGetPromptResult(
		"Guide for synthesizing insights from your Zettelkasten",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
