package mcpserver

// NoteFormatContract describes the canonical note format that LLM
// consumers should follow when creating notes.
const NoteFormatContract = `# Kasten Note Format Contract

Every note stored in Kasten MUST follow this structure.

## Structure

` + "```" + `markdown
+++
title = "Human-readable title"      # used in search, backlinks, graph
+++

Body text in standard Markdown.

Use [display text](other-note.md) to reference other notes. The link
destination is the identity of the target note: its path relative to
the slip-box root, including the .md extension.
` + "```" + `

## Rules

1. **The header is TOML** delimited by ` + "`" + `+++` + "`" + ` lines. The opening
   ` + "`" + `+++` + "`" + ` must be the very first line of the file.
2. **A note without a header is valid.** Its entire content is body and its
   title is empty. Prefer setting a title so the note is searchable.
3. **Extra header keys are allowed** (e.g. ` + "`" + `created` + "`" + `, ` + "`" + `draft` + "`" + `).
   They are preserved verbatim when the note is rewritten.
4. **Links** use the standard Markdown inline form ` + "`" + `[text](target)` + "`" + `.
   The target is a note identity with forward slashes: ` + "`" + `[graphs](topics/graphs.md)` + "`" + `.
5. **Identities** end with ` + "`" + `.md` + "`" + ` and never start with ` + "`" + `/` + "`" + ` or
   contain ` + "`" + `..` + "`" + ` segments.
6. **Encoding** is UTF-8.

## Example

` + "```" + `markdown
+++
title = "Zettelkasten method"
created = "2026-01-20"
+++

# Zettelkasten method

A slip-box holds atomic notes connected by links.

See [spaced repetition](learning/spaced-repetition.md) and
[note-taking workflow](workflow.md).
` + "```" + `
`
