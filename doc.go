/*
Package tgadmin edits a structured configuration file through a Telegram bot.

An operator sends /admin to the bot and receives an inline menu of the file's
top level. Objects and arrays open as nested menus; scalar entries can be
replaced and arrays can have elements appended or removed. Every accepted
change is written back to the file atomically, in its original format.

# Formats

JSON (with comments and trailing commas), YAML and TOML are supported. Key
order is preserved when the file is read, shown and written back.

# Addresses

Locations inside the file are written as slash-separated paths such as
/server/port. A key containing "/" or "~" is escaped as "~1" or "~0", and an
empty key as "~e". Menu buttons carry the action and address in at most 64
bytes; entries whose address would not fit are reported instead of shown.

# Usage

	tgadmin manage config.yaml --token "$TOKEN" --admin 123456789
	tgadmin inspect config.yaml /server

The packages under pkg/ can be embedded in another bot: pkg/domain holds the
value tree and conversation states, and pkg/ports the transport and storage
contracts.
*/
package tgadmin
