package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

func init() {
	scheduleCmd.AddCommand(scheduleSetCmd)
	scheduleCmd.AddCommand(scheduleDisableCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Prints the user's daily run schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		schedule, err := service.GetSchedule(cmd.Context(), userId)
		if err != nil {
			log.Fatal(err)
		}
		state := "disabled"
		if schedule.Enabled {
			state = "enabled"
		}
		fmt.Printf("%s (%s)\n", schedule.Time, state)
	},
}

var scheduleSetCmd = &cobra.Command{
	Use:   "set [HH:MM]",
	Short: "Enables the daily run at the given time.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reply, err := service.SetSchedule(cmd.Context(), userId, args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)
	},
}

var scheduleDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disables the daily run.",
	Run: func(cmd *cobra.Command, args []string) {
		reply, err := service.DisableSchedule(cmd.Context(), userId)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)
	},
}
