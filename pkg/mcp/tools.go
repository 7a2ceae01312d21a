package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mattermost/mmjstool/pkg/i18n"
)

func extractTranslationsTool() mcp.Tool {
	return mcp.NewTool(
		"extract_translations",
		mcp.WithDescription(`Extract translation keys and default messages from the JavaScript/TypeScript sources under a directory.

Recognizes formatMessage/localizeMessage/defineMessages calls, bare t() calls and
FormattedMessage-style JSX components. Returns the merged key to message map; keys
used without a literal default have an empty message. Extraction stops at the first
file that fails to parse, which is reported in "failure".`),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Source directory to scan")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
}

func checkTranslationsTool() mcp.Tool {
	return mcp.NewTool(
		"check_translations",
		mcp.WithDescription("Compare the keys used in a codebase's sources with its base dictionary (en.json). Returns the keys to add and to remove."),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Enum(i18n.Webapp, i18n.Mobile),
			mcp.Description("Codebase to check")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
}

func findEmptyTranslationsTool() mcp.Tool {
	return mcp.NewTool(
		"find_empty_translations",
		mcp.WithDescription("List the keys with an empty message in one dictionary of a codebase."),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Enum(i18n.Webapp, i18n.Mobile),
			mcp.Description("Codebase whose dictionaries to inspect")),
		mcp.WithString("file",
			mcp.DefaultString("en.json"),
			mcp.Description("Dictionary file name in the translations directory (default: en.json)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
}
