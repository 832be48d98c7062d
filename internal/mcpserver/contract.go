package mcpserver

// ItemFormatContract describes the canonical Markdown item format that
// LLM consumers should follow when creating or editing items.
const ItemFormatContract = `# Keepmd Item Format Contract

Every Markdown item stored in keepmd MUST follow this structure.

## Structure

` + "```" + `markdown
---
type: note                          # REQUIRED - note, link, or image
title: Human-readable title         # links only - page title
url: https://example.com            # links and images only
description: One-line summary       # links only - single line, no newlines
image: https://example.com/og.png   # links only - preview image URL
tags: go, reading                   # OPTIONAL - comma-separated
---

Body text in standard Markdown (notes only; links keep an empty body).
` + "```" + `

## Rules

1. **Front matter fences** are plain ` + "`" + `---` + "`" + ` lines. The opening fence must be
   the very first line of the file.
2. **Values are plain strings.** One ` + "`" + `key: value` + "`" + ` per line, split on the
   first colon; values may themselves contain colons (URLs are fine).
   No nesting, no lists, no quoting.
3. **Empty values are omitted** when the file is written.
4. **` + "`" + `type` + "`" + ` is derived, not chosen:** items with a ` + "`" + `url` + "`" + ` pointing at an
   image file (jpg, jpeg, png, gif, webp, avif, bmp, svg) are ` + "`" + `image` + "`" + `,
   items with any other ` + "`" + `url` + "`" + ` are ` + "`" + `link` + "`" + `, everything else is ` + "`" + `note` + "`" + `.
5. **Tags** are comma-separated in a single ` + "`" + `tags` + "`" + ` value.
6. **Filenames** are the item title sanitized for the filesystem, with a
   ` + "`" + `.md` + "`" + ` extension. Untitled items get a ` + "`" + `YYYYMMDDHHMMSS` + "`" + ` timestamp name.
7. **Encoding** is UTF-8.

## Example

` + "```" + `markdown
---
type: link
title: The Go Blog
url: https://go.dev/blog/
description: Official articles from the Go team
tags: go, reading
---
` + "```" + `
`
