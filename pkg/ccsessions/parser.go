package ccsessions

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// EntryType is the discriminant of a JSONL session entry
type EntryType string

const (
	EntryTypeUser       EntryType = "user"
	EntryTypeAssistant  EntryType = "assistant"
	EntryTypeToolUse    EntryType = "tool_use"
	EntryTypeToolResult EntryType = "tool_result"
)

// Entry is one validated session log record. The set of implementations is
// closed: UserEntry, AssistantEntry, ToolUseEntry and ToolResultEntry.
type Entry interface {
	Type() EntryType
	Time() string
	isEntry()
}

// UserEntry is a message typed by the user
type UserEntry struct {
	Content   string
	Timestamp string
}

// AssistantEntry is a message produced by the assistant
type AssistantEntry struct {
	Content   string
	Timestamp string
}

// ToolUseEntry records a tool invocation and its input object
type ToolUseEntry struct {
	ToolName  string
	ToolInput map[string]any
	Timestamp string
}

// ToolResultEntry records the textual output of a tool
type ToolResultEntry struct {
	ToolName  string
	Output    string
	Timestamp string
}

func (UserEntry) Type() EntryType       { return EntryTypeUser }
func (AssistantEntry) Type() EntryType  { return EntryTypeAssistant }
func (ToolUseEntry) Type() EntryType    { return EntryTypeToolUse }
func (ToolResultEntry) Type() EntryType { return EntryTypeToolResult }

func (e UserEntry) Time() string       { return e.Timestamp }
func (e AssistantEntry) Time() string  { return e.Timestamp }
func (e ToolUseEntry) Time() string    { return e.Timestamp }
func (e ToolResultEntry) Time() string { return e.Timestamp }

func (UserEntry) isEntry()       {}
func (AssistantEntry) isEntry()  {}
func (ToolUseEntry) isEntry()    {}
func (ToolResultEntry) isEntry() {}

// rawEntry represents a raw JSONL line. Fields stay as RawMessage so that
// each one can be checked for the exact JSON kind it must have.
type rawEntry struct {
	Type      json.RawMessage `json:"type"`
	Message   json.RawMessage `json:"message"`
	ToolName  json.RawMessage `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
	Output    json.RawMessage `json:"output"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type rawMessage struct {
	Role    json.RawMessage `json:"role"`
	Content json.RawMessage `json:"content"`
}

// maxLineSize bounds a single JSONL line (10MB)
const maxLineSize = 10 * 1024 * 1024

// ParseFile reads a session JSONL file and returns its valid entries.
// Only failing to open or read the file is an error.
func ParseFile(path string) (entries []Entry, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open file: %w", ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	entries, err = Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseString parses raw JSONL text already held in memory
func ParseString(raw string) []Entry {
	// strings.Reader never fails and Parse only fails on read errors
	entries, _ := Parse(strings.NewReader(raw))
	return entries
}

// Parse decodes newline-delimited JSON into typed entries, in input order.
// Blank lines, undecodable lines (e.g. truncated mid-write), lines longer
// than maxLineSize and records that match none of the entry shapes are
// dropped without error. Only a failing reader is an error.
func Parse(r io.Reader) ([]Entry, error) {
	reader := bufio.NewReaderSize(r, 64*1024)

	entries := make([]Entry, 0)
	lineNum := 0
	dropped := 0

	for {
		raw, tooLong, readErr := readLine(reader)
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("error reading session log: %w", readErr)
		}

		if len(raw) > 0 || tooLong {
			lineNum++
		}
		line := bytes.TrimSpace(raw)

		switch {
		case tooLong:
			dropped++
			log.Debug().Int("line", lineNum).Msg("skipping oversized session line")
		case len(line) == 0:
		default:
			var rec rawEntry
			if err := json.Unmarshal(line, &rec); err != nil {
				dropped++
				log.Debug().Int("line", lineNum).Err(err).Msg("skipping undecodable session line")
				break
			}
			if entry, ok := classify(&rec); ok {
				entries = append(entries, entry)
			} else {
				dropped++
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("kept", len(entries)).Msg("parsed session log")
	}

	return entries, nil
}

// readLine returns the next line including its terminator. A line longer
// than maxLineSize is consumed to its end and reported as tooLong without
// its content.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineSize+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return line, tooLong, err
	}
}

// classify matches a decoded line against the four entry shapes in turn
func classify(raw *rawEntry) (Entry, bool) {
	entryType, ok := jsonString(raw.Type)
	if !ok {
		return nil, false
	}
	timestamp, ok := jsonString(raw.Timestamp)
	if !ok {
		return nil, false
	}

	switch EntryType(entryType) {
	case EntryTypeUser:
		content, ok := messageContent(raw.Message, "user")
		if !ok {
			return nil, false
		}
		return UserEntry{Content: content, Timestamp: timestamp}, true

	case EntryTypeAssistant:
		content, ok := messageContent(raw.Message, "assistant")
		if !ok {
			return nil, false
		}
		return AssistantEntry{Content: content, Timestamp: timestamp}, true

	case EntryTypeToolUse:
		name, ok := jsonString(raw.ToolName)
		if !ok {
			return nil, false
		}
		input, ok := jsonObject(raw.ToolInput)
		if !ok {
			return nil, false
		}
		return ToolUseEntry{ToolName: name, ToolInput: input, Timestamp: timestamp}, true

	case EntryTypeToolResult:
		name, ok := jsonString(raw.ToolName)
		if !ok {
			return nil, false
		}
		output, ok := jsonString(raw.Output)
		if !ok {
			return nil, false
		}
		return ToolResultEntry{ToolName: name, Output: output, Timestamp: timestamp}, true
	}

	return nil, false
}

// messageContent validates {"role": <role>, "content": "<string>"}
func messageContent(data json.RawMessage, role string) (string, bool) {
	if jsonKind(data) != '{' {
		return "", false
	}
	var msg rawMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", false
	}
	gotRole, ok := jsonString(msg.Role)
	if !ok || gotRole != role {
		return "", false
	}
	return jsonString(msg.Content)
}

func jsonString(data json.RawMessage) (string, bool) {
	if jsonKind(data) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}

func jsonObject(data json.RawMessage) (map[string]any, bool) {
	if jsonKind(data) != '{' {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// jsonKind returns the first significant byte of a JSON value, or 0 when absent
func jsonKind(data json.RawMessage) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
