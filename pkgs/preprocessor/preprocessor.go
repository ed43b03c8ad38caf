// Package preprocessor runs the two textual passes that happen before
// the lexer ever sees a byte: include expansion and statement
// termination. Both passes are grounded in the original MSL
// compiler's preprocesser.py, ported line for line.
package preprocessor

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MinecraftKeywords are the reserved command names that both trigger
// the MCCMD lexer terminal and force unconditional statement
// termination during preprocessing.
var MinecraftKeywords = []string{
	"advancement", "attribute", "ban", "ban-ip", "banlist", "bossbar", "clear", "clone", "data", "datapack",
	"debug", "defaultgamemode", "deop", "difficult", "effect", "enchant", "execute", "experience", "fill",
	"forceload", "function", "gamemode", "gamerule", "give", "help", "item", "jfr", "kick", "kill", "list",
	"locate", "locatebiome", "loot", "me", "msg", "op", "pardon", "pardon-ip", "particle", "playsound",
	"publish", "recipe", "reload", "save-all", "save-off", "save-on", "say", "schedule", "scoreboard", "seed",
	"setblock", "setidletimeout", "setworldspawn", "spawnpoint", "spectate", "spreadplayers", "stop",
	"stopsound", "summon", "tag", "team", "teammsg", "teleport", "tell", "tellraw", "time", "title", "tm",
	"tp", "trigger", "w", "weather", "whitelist", "worldborder", "xp",
}

var includeRegex = regexp.MustCompile(`include <[\w.]+>`)

// Include expands every `include <name>` line in source by the
// verbatim contents of the sibling file "name" resolved relative to
// srcDir. Expansion is a single, non-recursive pass: files pulled in
// by include are not themselves scanned for further includes. A
// missing file replaces the directive with nothing rather than
// erroring; the line's newline stays, leaving an empty line.
func Include(srcDir, source string) string {
	lines := splitKeepEnds(source)

	for i, line := range lines {
		if strings.HasPrefix(line, "include") {
			lines[i] = includeRegex.ReplaceAllStringFunc(line, func(match string) string {
				name := strings.TrimSpace(strings.SplitN(match, " ", 2)[1])
				name = strings.TrimSuffix(strings.TrimPrefix(name, "<"), ">")

				path := filepath.Join(srcDir, name)
				contents, err := os.ReadFile(path)
				if err != nil {
					return ""
				}
				return string(contents)
			})
		}
	}

	return strings.Join(lines, "")
}

// terminators are the line endings that already imply "no semicolon
// needed here".
const terminators = "{(},;"

// AddEndings appends ';' to every non-empty line that needs one,
// tracking block-comment state so lines inside /* ... */ are left
// untouched. Lines that start with a reserved Minecraft command
// keyword receive a trailing ';' unless they already end in one, even
// if they end in one of the other terminator characters. Running it
// twice gives the same output as running it once.
func AddEndings(source string) string {
	lines := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
	inComment := false

	for i, line := range lines {
		line = strings.TrimRight(line, "\n ")
		line = strings.TrimLeft(line, "\t ")

		if len(line) > 0 {
			if strings.HasPrefix(line, "/*") {
				inComment = true
			}

			if !inComment {
				switch {
				case hasKeywordPrefix(line) && !strings.HasSuffix(line, ";"):
					line += ";"
				case !endsInTerminator(line) && !strings.HasPrefix(line, "//"):
					line += ";"
				}
			}
		}

		if strings.HasSuffix(line, "*/") {
			inComment = false
		}

		lines[i] = line
	}

	return strings.Join(lines, "\n") + "\n"
}

// keywordPrefixRegex matches a line starting with a reserved keyword
// as a whole word, so `while(...)` does not count as the `w` command.
var keywordPrefixRegex = regexp.MustCompile(`^(` + strings.Join(MinecraftKeywords, "|") + `)\b`)

func hasKeywordPrefix(line string) bool {
	return keywordPrefixRegex.MatchString(line)
}

func endsInTerminator(line string) bool {
	return strings.ContainsRune(terminators, rune(line[len(line)-1]))
}

// splitKeepEnds splits s on '\n', keeping the newline on every line
// except possibly the last, matching Python's str.splitlines(True).
func splitKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
