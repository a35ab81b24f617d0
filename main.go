package main

import "github.com/mylicula/relink/cmd"

func main() {
	cmd.Execute()
}
