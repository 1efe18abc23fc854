// Package backend provides the Tangle API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Bearer token verification middleware
// - internal/social: Friend request, friendship and follow operations
// - internal/engagement: Like, save and poll vote operations
// - internal/notify: Notification fan-out and feed
// - internal/websocket: WebSocket server for live notification delivery
// - internal/cache: Redis projection cache and pub/sub
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (request metrics)
// - internal/stories: Story expiry sweeping

// See the individual package documentation for detailed API reference.
package backend
