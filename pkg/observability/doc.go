/*
Package observability provides lifecycle hooks for auditing conversations.

LoggingHooks writes every transition, mutation, menu and refusal to a
structured logger; Merge fans one set of callbacks out to several
consumers, so logging and metrics can observe the same controller.
*/
package observability
