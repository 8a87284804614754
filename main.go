package main

import "github.com/KaramelBytes/fitreport/cmd"

func main() {
	cmd.Execute()
}
