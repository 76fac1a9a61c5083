// Command keypad is a four-function calculator for terminals, HTTP clients and MCP agents.
package main

func main() {
	Execute()
}
