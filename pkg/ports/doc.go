/*
Package ports defines the driven ports (interfaces) for the tgadmin controller.

These interfaces decouple the conversation logic from the chat transport, the
document formats and the places conversation state is kept.

# Key Interfaces

  - Messenger: Sends and edits chat messages carrying inline buttons.
  - Codec: Parses and serializes documents in a given Format.
  - StateStore: Keeps the ConversationState of each chat.
  - DistributedLocker: Serializes document writes across processes.
*/
package ports
