package core

import (
	"strings"

	"github.com/brads3290/cchooks"
)

// DualMessagePreToolResponse wraps a PreToolUse response with separate
// messages for the end-user and the agent.
type DualMessagePreToolResponse struct {
	*cchooks.PreToolUseResponse
	userMessage  string
	agentMessage string
}

// DualMessagePostToolResponse is the PostToolUse counterpart
type DualMessagePostToolResponse struct {
	*cchooks.PostToolUseResponse
	userMessage  string
	agentMessage string
}

func pickAgent(userMsg string, agentMsg []string) string {
	if len(agentMsg) > 0 {
		return agentMsg[0]
	}
	return userMsg
}

// BlockWithMessages creates a blocking PreToolUse response.
// If agentMsg is omitted, userMsg is sent to both audiences.
func BlockWithMessages(userMsg string, agentMsg ...string) cchooks.PreToolUseResponseInterface {
	return &DualMessagePreToolResponse{
		PreToolUseResponse: cchooks.Block(userMsg),
		userMessage:        userMsg,
		agentMessage:       pickAgent(userMsg, agentMsg),
	}
}

// ApproveWithMessages creates an approving PreToolUse response with context
func ApproveWithMessages(userMsg string, agentMsg ...string) cchooks.PreToolUseResponseInterface {
	return &DualMessagePreToolResponse{
		PreToolUseResponse: cchooks.Approve(),
		userMessage:        userMsg,
		agentMessage:       pickAgent(userMsg, agentMsg),
	}
}

// PostBlockWithMessages creates a blocking PostToolUse response
func PostBlockWithMessages(userMsg string, agentMsg ...string) cchooks.PostToolUseResponseInterface {
	return &DualMessagePostToolResponse{
		PostToolUseResponse: cchooks.PostBlock(userMsg),
		userMessage:         userMsg,
		agentMessage:        pickAgent(userMsg, agentMsg),
	}
}

// AllowWithMessages creates an allowing PostToolUse response with context
func AllowWithMessages(userMsg string, agentMsg ...string) cchooks.PostToolUseResponseInterface {
	return &DualMessagePostToolResponse{
		PostToolUseResponse: cchooks.Allow(),
		userMessage:         userMsg,
		agentMessage:        pickAgent(userMsg, agentMsg),
	}
}

// GetUserMessage returns the message intended for the end-user.
func (r *DualMessagePreToolResponse) GetUserMessage() string { return r.userMessage }

// GetAgentMessage returns the message intended for the AI agent.
func (r *DualMessagePreToolResponse) GetAgentMessage() string { return r.agentMessage }

// GetUserMessage returns the message intended for the end-user.
func (r *DualMessagePostToolResponse) GetUserMessage() string { return r.userMessage }

// GetAgentMessage returns the message intended for the AI agent.
func (r *DualMessagePostToolResponse) GetAgentMessage() string { return r.agentMessage }

// PreToolResponse maps a decision onto the cchooks PreToolUse vocabulary.
// The user sees the blocking reason; the agent gets every finding.
func PreToolResponse(d Decision) cchooks.PreToolUseResponseInterface {
	detail := strings.Join(d.Validation(), "\n")
	if d.Blocked() {
		return BlockWithMessages(d.Reason(), detail)
	}
	if detail == "" && d.Message == "" {
		return cchooks.Approve()
	}
	return ApproveWithMessages(firstNonEmpty(d.Message, detail), detail)
}

// PostToolResponse maps a decision onto the cchooks PostToolUse vocabulary
func PostToolResponse(d Decision) cchooks.PostToolUseResponseInterface {
	detail := strings.Join(d.Validation(), "\n")
	if d.Blocked() {
		return PostBlockWithMessages(d.Reason(), detail)
	}
	if detail == "" && d.Message == "" {
		return cchooks.Allow()
	}
	return AllowWithMessages(firstNonEmpty(d.Message, detail), detail)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
