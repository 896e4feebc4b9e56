package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"stimlint/internal/naming"
	"stimlint/internal/parser"
	"stimlint/internal/rubyast"
)

// skipDirective suppresses the broadcast call on the following line.
const skipDirective = "stimlint:disable"

// trailingIDRe strips the per-record suffix from a stream name: "chat_42"
// and the static prefix "chat_" of "chat_#{id}" both resolve to channel
// "chat".
var trailingIDRe = regexp.MustCompile(`[_\d]+$`)

// ValidateBroadcasts parses channel and job sources for
// `X.server.broadcast(stream, payload)` call sites and checks each against
// the frontend: the stream's channel must have a controller file, the
// payload must carry a type field, and the controller must declare the
// matching handle<Type> method. Files that fail to parse are skipped, not
// fatal.
func (r *Runner) ValidateBroadcasts() ([]Finding, error) {
	var findings []Finding
	for _, dir := range r.Config.ChannelsDirs {
		files, err := rubyFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			fs, err := r.broadcastFile(path)
			if err != nil {
				// Whole-file parse failure: exclude from scanning, run on.
				continue
			}
			findings = append(findings, fs...)
		}
	}
	return findings, nil
}

func rubyFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(p, ".rb") {
			files = append(files, p)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (r *Runner) broadcastFile(path string) ([]Finding, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := parser.ParseRuby(source)
	if err != nil || tree == nil {
		return nil, fmt.Errorf("parse %s", path)
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")
	root := tree.RootNode()

	var findings []Finding
	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if !isServerBroadcast(node, source) {
			return true
		}
		row := node.StartPosition().Row
		if row > 0 && strings.Contains(lines[row-1], skipDirective) {
			return true
		}
		findings = append(findings, r.checkBroadcast(path, root, node, source, int(row)+1)...)
		return true
	})
	return findings, nil
}

// isServerBroadcast matches the `X.server.broadcast(...)` call chain.
func isServerBroadcast(node *tree_sitter.Node, source []byte) bool {
	if node.Kind() != "call" && node.Kind() != "command_call" {
		return false
	}
	method := node.ChildByFieldName("method")
	if method == nil || parser.NodeText(method, source) != "broadcast" {
		return false
	}
	receiver := node.ChildByFieldName("receiver")
	if receiver == nil {
		return false
	}
	return strings.HasSuffix(parser.NodeText(receiver, source), "server")
}

func (r *Runner) checkBroadcast(path string, root, call *tree_sitter.Node, source []byte, line int) []Finding {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}

	stream, ok := streamName(root, args.NamedChild(0), source)
	if !ok || stream == "" {
		return nil
	}
	channel := trailingIDRe.ReplaceAllString(stream, "")
	if channel == "" {
		return nil
	}
	controllerName := naming.Kebab(channel)

	var findings []Finding
	ctrl, registered := r.Controllers[controllerName]
	if !registered {
		findings = append(findings, Finding{
			Kind:       BroadcastMissingFrontendFile,
			File:       path,
			Line:       line,
			Message:    fmt.Sprintf("broadcast to stream %q expects a %q controller, but none exists", stream, controllerName),
			Suggestion: fmt.Sprintf("create %s_controller.js to handle this stream", naming.Underscore(channel)),
		})
	}

	typeVal, hasType := rubyast.HashStringValue(args, source, "type")
	if !hasType || typeVal == "" {
		findings = append(findings, Finding{
			Kind:       BroadcastMissingType,
			File:       path,
			Line:       line,
			Message:    fmt.Sprintf("broadcast to stream %q carries no type field in its payload", stream),
			Suggestion: "add type: '<event-name>' so the frontend can dispatch the message",
		})
		return findings
	}

	if registered && !ctrl.IsSystemController {
		handler := "handle" + naming.Pascalize(typeVal)
		if !ctrl.HasMethod(handler) {
			findings = append(findings, Finding{
				Kind:       BroadcastMissingHandler,
				File:       path,
				Line:       line,
				Message:    fmt.Sprintf("broadcast type %q expects method %q on controller %q", typeVal, handler, controllerName),
				Suggestion: fmt.Sprintf("add %s() to %s", handler, ctrl.SourceFile),
			})
		}
	}
	return findings
}

// streamName extracts the stream's static name from the first broadcast
// argument: a (possibly interpolated) string literal, or a local variable
// resolved to its nearest preceding string assignment.
func streamName(root, arg *tree_sitter.Node, source []byte) (string, bool) {
	switch arg.Kind() {
	case "string":
		prefix, _ := rubyast.StaticPrefix(arg, source)
		return prefix, true
	case "identifier":
		return rubyast.ResolveLocalString(root, source, parser.NodeText(arg, source), arg.StartPosition().Row+1)
	}
	return "", false
}
