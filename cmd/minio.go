package cmd

import (
	"context"
	"fmt"
	"log"

	"Tracklab/config"
	"Tracklab/storage"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO upload bucket",
	Long:  `Connect to MinIO and list the stored upload objects, optionally filtered by key prefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		objects, err := storage.List(context.Background(), minioPrefix)
		if err != nil {
			log.Fatalf("Failed to list objects: %v", err)
		}

		var total int64
		for _, object := range objects {
			fmt.Printf("%12d  %s  %s\n", object.Size,
				object.LastModified.Format("2006-01-02 15:04:05"), object.Key)
			total += object.Size
		}
		fmt.Printf("%d objects, %d bytes total\n", len(objects), total)
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "filter objects by key prefix")
}
