package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/gmail"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/tools/batch"
	"github.com/aura-assistant/aura/internal/tools/common"
)

// RegisterLabelTools registers label-related tools with the MCP server
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List labels tool (read-only, always available)
	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List all Gmail labels for the account. Use this to get label IDs for the other label tools."),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(listLabelsTool, common.InstrumentedToolHandler("gmail_list_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createLabelTool := mcp.NewTool("gmail_create_label",
		mcp.WithDescription("Create a new Gmail label"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name of the label. Use '/' to nest labels (e.g., 'Finance/Receipts')"),
		),
		mcp.WithString("messageListVisibility",
			mcp.Description("Show or hide the label in the message list: 'show' (default) or 'hide'"),
			mcp.Enum(gmail.MessageListShow, gmail.MessageListHide),
		),
		mcp.WithString("labelListVisibility",
			mcp.Description("Visibility in the label list: 'labelShow' (default), 'labelShowIfUnread' or 'labelHide'"),
			mcp.Enum(gmail.LabelListShow, gmail.LabelListShowIfUnread, gmail.LabelListHide),
		),
	)
	s.AddTool(createLabelTool, common.InstrumentedToolHandler("gmail_create_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	editLabelTool := mcp.NewTool("gmail_edit_label",
		mcp.WithDescription("Modify an existing Gmail label. Only the provided fields change."),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label to edit"),
		),
		mcp.WithString("name",
			mcp.Description("The new display name for the label"),
		),
		mcp.WithString("messageListVisibility",
			mcp.Description("Show or hide the label in the message list: 'show' or 'hide'"),
			mcp.Enum(gmail.MessageListShow, gmail.MessageListHide),
		),
		mcp.WithString("labelListVisibility",
			mcp.Description("Visibility in the label list: 'labelShow', 'labelShowIfUnread' or 'labelHide'"),
			mcp.Enum(gmail.LabelListShow, gmail.LabelListShowIfUnread, gmail.LabelListHide),
		),
	)
	s.AddTool(editLabelTool, common.InstrumentedToolHandler("gmail_edit_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleEditLabel(ctx, request, sc)
		}))

	deleteLabelTool := mcp.NewTool("gmail_delete_label",
		mcp.WithDescription("Delete a Gmail label. The label is removed from all messages; the messages are kept."),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label to delete"),
		),
	)
	s.AddTool(deleteLabelTool, common.InstrumentedToolHandler("gmail_delete_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteLabel(ctx, request, sc)
		}))

	modifyLabelsTool := mcp.NewTool("gmail_modify_message_labels",
		mcp.WithDescription(fmt.Sprintf("Add and/or remove labels on a Gmail message using label IDs. Up to %d labels each.", gmail.MaxLabelsPerModify)),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to modify"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Comma-separated list of label IDs to add (e.g., 'Label_1,STARRED')"),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Comma-separated list of label IDs to remove (e.g., 'INBOX,UNREAD')"),
		),
	)
	s.AddTool(modifyLabelsTool, common.InstrumentedToolHandler("gmail_modify_message_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyMessageLabels(ctx, request, sc)
		}))

	batchModifyTool := mcp.NewTool("gmail_batch_modify_message_labels",
		mcp.WithDescription(fmt.Sprintf("Apply the same label changes to up to %d Gmail messages. Reports the outcome per message.", batch.MaxItems)),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Comma-separated list of message IDs to modify"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Comma-separated list of label IDs to add"),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Comma-separated list of label IDs to remove"),
		),
	)
	s.AddTool(batchModifyTool, common.InstrumentedToolHandler("gmail_batch_modify_message_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchModifyMessageLabels(ctx, request, sc)
		}))

	return nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, err := getGmailClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}
	if len(labels) == 0 {
		return mcp.NewToolResultText("No labels found."), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d labels:\n\n", len(labels))
	for i, label := range labels {
		fmt.Fprintf(&result, "%d. %s\n", i+1, label.Name)
		fmt.Fprintf(&result, "   ID: %s\n", label.ID)
		if label.Type != "" {
			fmt.Fprintf(&result, "   Type: %s\n", label.Type)
		}
		if label.MessageListVisibility != "" || label.LabelListVisibility != "" {
			fmt.Fprintf(&result, "   Visibility: %s / %s\n", label.MessageListVisibility, label.LabelListVisibility)
		}
		if label.MessagesTotal > 0 {
			fmt.Fprintf(&result, "   Messages: %d (%d unread)\n", label.MessagesTotal, label.MessagesUnread)
		}
		result.WriteString("\n")
	}
	return mcp.NewToolResultText(result.String()), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredStringArg(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getGmailClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label, err := client.CreateLabel(ctx, name,
		common.StringArg(args, "messageListVisibility"),
		common.StringArg(args, "labelListVisibility"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label created successfully. ID: %s, Name: %s", label.ID, label.Name)), nil
}

func handleEditLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	labelID, err := common.RequiredStringArg(args, "labelId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	update := gmail.LabelUpdate{
		Name:                  common.OptionalStringArg(args, "name"),
		MessageListVisibility: common.OptionalStringArg(args, "messageListVisibility"),
		LabelListVisibility:   common.OptionalStringArg(args, "labelListVisibility"),
	}
	if update.IsEmpty() {
		return mcp.NewToolResultError("At least one of name, messageListVisibility or labelListVisibility is required"), nil
	}

	client, err := getGmailClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label, err := client.UpdateLabel(ctx, labelID, update)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label updated successfully. ID: %s, Name: %s", label.ID, label.Name)), nil
}

func handleDeleteLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	labelID, err := common.RequiredStringArg(args, "labelId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getGmailClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteLabel(ctx, labelID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Label %s deleted successfully", labelID)), nil
}

func handleModifyMessageLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, err := common.RequiredStringArg(args, "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	add, err := common.StringListArg(args, "addLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	remove, err := common.StringListArg(args, "removeLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getGmailClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := client.ModifyMessageLabels(ctx, messageID, add, remove)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to modify labels: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully modified labels for message %s. Current labels: %s",
		messageID, strings.Join(labels, ", "))), nil
}

func handleBatchModifyMessageLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseIDs(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	add, err := common.StringListArg(args, "addLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	remove, err := common.StringListArg(args, "removeLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(add) == 0 && len(remove) == 0 {
		return mcp.NewToolResultError("At least one of addLabelIds or removeLabelIds is required"), nil
	}

	client, err := getGmailClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.Process(ctx, messageIDs, func(ctx context.Context, messageID string) (string, error) {
		labels, err := client.ModifyMessageLabels(ctx, messageID, add, remove)
		if err != nil {
			return "", err
		}
		return "Current labels: " + strings.Join(labels, ", "), nil
	})

	summary := batch.Summarize(results)
	text := fmt.Sprintf("Modified labels on %d of %d messages.\n\n%s",
		summary.Successful, summary.Total, batch.FormatResults(results))
	if summary.Successful == 0 {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}
