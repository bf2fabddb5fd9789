// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional .env file and an optional config
// file. Environment variables use the HANXUE_ prefix, so server.port is read
// from HANXUE_SERVER_PORT.
package config
