package main

import "github.com/chuanlbx-ui/zhongdao-api-sub012/cmd"

func main() {
	cmd.Execute()
}
