/*
Package session serializes access to per-chat conversation state.

Every inbound event for a chat runs inside Manager.Transact, which loads the
chat's state, hands it to the caller and stores whatever state the caller
returns, all while holding that chat's lock. Events of different chats never
wait on each other.
*/
package session
