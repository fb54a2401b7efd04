package mcpserver

// ItemContract describes the input rules an LLM consumer must follow when
// adding items to the order list.
const ItemContract = `# Order List Item Contract

Every item added to the order list MUST satisfy these rules.

## Fields

- **name** (string, required): non-empty after trimming surrounding spaces.
- **quantity** (integer, required): 1 or greater.
- **icon** (string, required): an id from the icon catalog. Read the
  ` + "`" + `orderlist://icons` + "`" + ` resource or call ` + "`" + `list_icons` + "`" + ` to get the ids.

## Behaviour

1. Items keep insertion order. The generated document lists them in that order.
2. Every add or remove produces exactly one notification. A rejected add leaves
   the list unchanged.
3. Item ids are opaque and never reused. Use the id returned by ` + "`" + `add_item` + "`" + `
   or ` + "`" + `list_items` + "`" + ` to remove an item.
4. ` + "`" + `export_items` + "`" + ` fails on an empty list. If any icon cannot be rendered
   the whole export fails and the failed item names are reported.

## Example

` + "```" + `json
{"name": "Milk", "quantity": 2, "icon": "Shopping"}
` + "```" + `
`
