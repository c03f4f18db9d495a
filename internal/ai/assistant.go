package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest wraps every input validation failure of the Assistant.
var ErrInvalidRequest = errors.New("invalid request")

const generateSystemPrompt = "You are an expert AutoHotkey programmer. Generate clean, well-commented AutoHotkey v2 scripts based on user requests. Always include #Requires AutoHotkey v2.0 at the top. Provide only the script code, no explanations."

const convertSystemPrompt = "You convert Python code to AutoHotkey (AHK) scripts. Make sure the conversion is accurate and follows AutoHotkey best practices. Include comments explaining the conversion where necessary. Provide ONLY the AutoHotkey code without any explanations or markdown formatting."

const validateSystemPrompt = `You are an expert in both Python and AutoHotkey. Review the code conversion you are given and validate if it is correct.

Please analyze:
1. Is the conversion accurate?
2. Does the AutoHotkey code preserve the functionality of the Python code?
3. Are there any syntax errors or issues?
4. Are there any potential runtime errors?

Provide a clear assessment with specific feedback.`

const debugSystemPrompt = `You are an expert debugger for Python to AutoHotkey conversions.

Please:
1. Identify the problem(s)
2. Explain why it's occurring
3. Provide the corrected AutoHotkey code
4. Explain what was fixed`

const gameScriptSystemPrompt = `You are an expert in AutoHotkey game automation. Generate a complete, working AutoHotkey script for the task you are given.

Create a production-ready AutoHotkey script that:
1. Includes proper error handling
2. Has clear comments explaining each section
3. Uses efficient AutoHotkey coding practices
4. Includes safety features (pause/exit hotkeys)
5. Is ready to run without modifications

Provide ONLY the AutoHotkey code without explanations or markdown formatting.`

const (
	DefaultScriptType = "Custom Script"
	longFormMaxTokens = 8192
)

// Operation selects what Transcribe asks the model to do.
type Operation string

const (
	OperationConvert  Operation = "convert"
	OperationValidate Operation = "validate"
	OperationDebug    Operation = "debug"
)

type TranscribeRequest struct {
	PythonCode string    `json:"pythonCode"`
	AHKCode    string    `json:"ahkCode"`
	Issue      string    `json:"issue"`
	Operation  Operation `json:"operation"`
}

type GameScriptRequest struct {
	GameName        string `json:"gameName"`
	TaskDescription string `json:"taskDescription"`
	ScriptType      string `json:"scriptType"`
}

// Assistant holds the fixed prompts for the script generation features.
type Assistant struct {
	Client Client
}

func NewAssistant(c Client) *Assistant {
	return &Assistant{Client: c}
}

func required(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
}

// Generate writes an AutoHotkey v2 script for a free-form request.
func (a *Assistant) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", required("prompt")
	}
	return a.complete(ctx, CompletionRequest{
		System:      generateSystemPrompt,
		User:        prompt,
		Temperature: 0.7,
	})
}

// Transcribe converts Python to AutoHotkey, or validates or debugs an existing conversion.
func (a *Assistant) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	op := req.Operation
	if op == "" {
		op = OperationConvert
	}
	if strings.TrimSpace(req.PythonCode) == "" {
		return "", required("pythonCode")
	}

	var cr CompletionRequest
	switch op {
	case OperationConvert:
		cr = CompletionRequest{
			System: convertSystemPrompt,
			User:   "Python code:\n```python\n" + req.PythonCode + "\n```",
		}
	case OperationValidate, OperationDebug:
		if strings.TrimSpace(req.AHKCode) == "" {
			return "", required("ahkCode")
		}
		user := conversionPair(req.PythonCode, req.AHKCode)
		cr.System = validateSystemPrompt
		if op == OperationDebug {
			cr.System = debugSystemPrompt
			if issue := strings.TrimSpace(req.Issue); issue != "" {
				user += "\n\nIssue reported: " + issue
			} else {
				user += "\n\nPlease identify any potential issues in this conversion."
			}
		}
		cr.User = user
	default:
		return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, op)
	}

	cr.Temperature = 0.2
	cr.MaxTokens = longFormMaxTokens
	return a.complete(ctx, cr)
}

// GameScript writes a game automation script.
func (a *Assistant) GameScript(ctx context.Context, req GameScriptRequest) (string, error) {
	if strings.TrimSpace(req.GameName) == "" {
		return "", required("gameName")
	}
	if strings.TrimSpace(req.TaskDescription) == "" {
		return "", required("taskDescription")
	}
	scriptType := strings.TrimSpace(req.ScriptType)
	if scriptType == "" {
		scriptType = DefaultScriptType
	}

	user := "Game: " + strings.TrimSpace(req.GameName) +
		"\nTask: " + strings.TrimSpace(req.TaskDescription) +
		"\nScript Type: " + scriptType
	return a.complete(ctx, CompletionRequest{
		System:      gameScriptSystemPrompt,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   longFormMaxTokens,
	})
}

func (a *Assistant) complete(ctx context.Context, req CompletionRequest) (string, error) {
	out, err := a.Client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func conversionPair(python, ahkCode string) string {
	return "Original Python code:\n```python\n" + python + "\n```\n\nConverted AutoHotkey code:\n```ahk\n" + ahkCode + "\n```"
}
