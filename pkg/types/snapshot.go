package types

// Server -> Client
// Snapshot | Patch:
//   version: number                        // bumps once per patch batch
//   patches: Patch[]
//
// Patch:
//   op: "text" | "class+" | "class-" | "className" | "attr" | "attr-" |
//       "style" | "create" | "prepend" | "append" | "remove"
//   id: string                             // element id, "n-<uuid>" for created ones
//   key?: string                           // attr/style name, classes for create
//   value?: string
//   parent?: string                        // prepend/append target
//
// Error:
//   error: string                          // unknown intent, bad json, unknown type
