package mcpserver

// LogFormatContract describes the daily log format the digest parser
// understands. LLM consumers should follow it when drafting logs.
const LogFormatContract = `# Team Digest Log Format

One Markdown file per day, named ` + "`notes-YYYY-MM-DD.md`" + `, directly inside the logs
directory. Files in sub-directories and files with other names are ignored.

## Structure

` + "```" + `markdown
---
author: ops                # OPTIONAL – frontmatter is stripped before parsing
---

## Summary
Shipped the billing migration.

## Decisions
- Freeze schema changes until Friday

## Actions
- [high] Alex to ship the export job
- [p2] Priya - review the runbook
- Sam: chase the vendor [low]

## Risks
- Vendor SLA slips again

## Dependencies
- Data team snapshot

## Notes
- Retro moved to Thursday
` + "```" + `

## Rules

1. **Sections** are headings of level 2 to 6 whose first word is one of
   Summary, Decisions, Actions, Risks, Dependencies or Notes (case-insensitive,
   trailing punctuation allowed, so "Actions (this week)" counts). Other
   headings are content, not boundaries. When a section repeats, the first wins.
2. **Bullets** start with -, *, +, a number ("1." or "1)"), a checkbox, or a
   unicode bullet or dash, followed by whitespace. An escaped ` + "`\\-`" + ` counts too.
3. **Actions** are bullets in the Actions section. Without bullets, every
   non-empty line in the section is an action.
4. **Priority tags** are [high], [medium], [low] or [p0], [p1], [p2]
   (p0=high, p1=medium, p2=low), case-insensitive, anywhere in the line. The
   first tag wins and is removed from the displayed text. No tag means "other".
5. **Owners** come from "[tag] Name to ...", "[tag] Name - ...", "(owner: name)",
   or else the first capitalised word.
6. **Encoding** is UTF-8. Windows-1252 files and common mojibake are repaired
   on read.
`
