/*
Package domain contains the core domain models of the tgadmin editor.

It defines the closed variants the rest of the module switches over, and is
kept free of I/O and transport concerns.

# Key Entities

  - Value: a node of the structured document (Null, Bool, Number, String, Array, Object).
  - Path: the canonical address of a location inside the document tree.
  - Action: the button payload union (Go, UpdateAt, AddTo, RemoveFrom) and its wire codec.
  - ConversationState: the per-chat state (Unauthorized, Authorized, Navigating, AwaitingInput).
  - Event: an inbound command, button press or text message.
*/
package domain
