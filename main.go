package main

import "github.com/student-records/apiserver/cmd"

func main() {
	cmd.Execute()
}
