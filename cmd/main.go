package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudfree/cloudfree-cli/internal/delivery"
	"github.com/cloudfree/cloudfree-cli/internal/imagery"
	"github.com/cloudfree/cloudfree-cli/internal/notification"
	"github.com/cloudfree/cloudfree-cli/internal/properties"
	"github.com/cloudfree/cloudfree-cli/internal/raster"
	"github.com/cloudfree/cloudfree-cli/output"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Cloudfree", "isometric1", true)
	figure2 := figure.NewFigure("CLI", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Printf("\033[34m%s\033[0m", prompt)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func readDate(reader *bufio.Reader, prompt string) (time.Time, error) {
	return time.Parse("2006-01-02", readLine(reader, prompt))
}

func readCompositeInputs(reader *bufio.Reader) (aoi, feature string, startDate, endDate time.Time, maxCloud float64, policy raster.NoDataPolicy, err error) {
	aoi = readLine(reader, "Enter the AOI name: ")
	feature = readLine(reader, "Enter the feature id: ")

	startDate, err = readDate(reader, "Enter the start date (YYYY-MM-DD): ")
	if err != nil {
		return
	}
	endDate, err = readDate(reader, "Enter the end date (YYYY-MM-DD): ")
	if err != nil {
		return
	}

	maxCloud = 30
	if raw := readLine(reader, "Enter the max scene cloud cover %% (default 30): "); raw != "" {
		if _, scanErr := fmt.Sscanf(raw, "%f", &maxCloud); scanErr != nil {
			err = fmt.Errorf("invalid cloud cover value: %s", raw)
			return
		}
	}

	policy = raster.SCLCloudPolicy()
	if strings.EqualFold(readLine(reader, "Mask clouds with the SCL band? (Y/n): "), "n") {
		policy = raster.DefaultNoDataPolicy()
	}
	return
}

func runBuildComposite(reader *bufio.Reader) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33m- A '.geojson' file with the AOI name should be present in data/geojsons folder.\033[0m")
	fmt.Println("\033[33m- The '.geojson' file should contain the desired feature identified by feature_id.\n\033[0m")

	aoi, feature, startDate, endDate, maxCloud, policy, err := readCompositeInputs(reader)
	if err != nil {
		fmt.Printf("\n\033[31mInvalid input: %s\033[0m\n", err.Error())
		return
	}

	result, err := delivery.BuildComposite(aoi, feature, startDate, endDate, maxCloud, policy)
	if err != nil {
		fmt.Printf("\n\033[31mError building composite: %s\033[0m\n", err.Error())
		notification.SendDiscordErrorNotification(fmt.Sprintf("Cloudfree CLI\n\nError building composite: %s", err.Error()))
		return
	}

	resultDir := filepath.Join(properties.RootPath(), "data", "result", aoi, feature)
	baseName := fmt.Sprintf("%s_%s_%s", feature, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	imagePath, err := output.CreateTrueColorImage(result.Composite, "B04", "B03", "B02", raster.DefaultGamma, "", filepath.Join(resultDir, baseName+".png"))
	if err != nil {
		fmt.Printf("\n\033[31mError rendering composite: %s\033[0m\n", err.Error())
		notification.SendDiscordErrorNotification(fmt.Sprintf("Cloudfree CLI\n\nError rendering composite: %s", err.Error()))
		return
	}

	geotiffPath, err := output.CreateCompositeGeoTIFF(result.Composite, filepath.Join(resultDir, baseName+".tiff"))
	if err != nil {
		fmt.Printf("\n\033[31mError exporting GeoTIFF: %s\033[0m\n", err.Error())
		notification.SendDiscordErrorNotification(fmt.Sprintf("Cloudfree CLI\n\nError exporting GeoTIFF: %s", err.Error()))
		return
	}

	reportPath, err := output.CreateSceneReport(result.Scenes, result.CentroidLat, result.CentroidLon, filepath.Join(resultDir, baseName+".csv"))
	if err != nil {
		fmt.Printf("\n\033[31mError writing scene report: %s\033[0m\n", err.Error())
		return
	}

	fmt.Printf("\n\033[32mSuccessful composite!\n Image located at: %s\n GeoTIFF located at: %s\n Scene report located at: %s\033[0m\n", imagePath, geotiffPath, reportPath)
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Cloudfree CLI\n\nSuccessful composite!\nImage located at: %s\nGeoTIFF located at: %s", imagePath, geotiffPath))
}

func runBuildTimelapse(reader *bufio.Reader) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33mOne composite is built per calendar month; months without usable scenes are skipped.\n\033[0m")

	aoi, feature, startDate, endDate, maxCloud, policy, err := readCompositeInputs(reader)
	if err != nil {
		fmt.Printf("\n\033[31mInvalid input: %s\033[0m\n", err.Error())
		return
	}

	fps := 2
	if raw := readLine(reader, "Enter frames per second (default 2): "); raw != "" {
		if _, scanErr := fmt.Sscanf(raw, "%d", &fps); scanErr != nil {
			fmt.Printf("\n\033[31mInvalid fps value: %s\033[0m\n", raw)
			return
		}
	}

	videoPath, err := delivery.BuildTimelapse(aoi, feature, startDate, endDate, maxCloud, policy, fps)
	if err != nil {
		fmt.Printf("\n\033[31mError building timelapse: %s\033[0m\n", err.Error())
		notification.SendDiscordErrorNotification(fmt.Sprintf("Cloudfree CLI\n\nError building timelapse: %s", err.Error()))
		return
	}

	fmt.Printf("\n\033[32mSuccessful timelapse!\n Video located at: %s\033[0m\n", videoPath)
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Cloudfree CLI\n\nSuccessful timelapse!\nVideo located at: %s", videoPath))
}

func listAOIs() {
	aois, err := imagery.ListAOIs()
	if err != nil {
		fmt.Printf("\n\033[31mError reading geojsons folder: %s\033[0m\n", err.Error())
		return
	}
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33mTo add a new AOI, add its '.geojson' file at 'data/geojsons' folder.\033[0m")

	fmt.Println("\n\033[32mAvailable AOIs:\033[0m")
	for _, aoi := range aois {
		fmt.Printf("\033[32m- %s\033[0m\n", aoi)
	}
}

func listFeatures(reader *bufio.Reader) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33mFeatures are identified by the 'feature_id' property at 'features[N].properties.feature_id'.\n\033[0m")

	aoi := readLine(reader, "Enter the AOI name: ")
	ids, err := imagery.ListFeatureIDs(aoi)
	if err != nil {
		fmt.Printf("\n\033[31mError reading AOI file: %s\033[0m\n", err.Error())
		return
	}
	if len(ids) == 0 {
		fmt.Printf("\n\033[31mNo feature IDs found in the GeoJSON file.\033[0m\n")
		return
	}
	fmt.Println("\033[32m\nAvailable features:\033[0m")
	for _, id := range ids {
		fmt.Printf("\033[32m- %s\033[0m\n", id)
	}
}

func listCachedScenes(reader *bufio.Reader) {
	aoi := readLine(reader, "Enter the AOI name: ")
	scenes, err := imagery.ListCachedScenes(aoi)
	if err != nil {
		fmt.Printf("\n\033[31mError reading cached scenes: %s\033[0m\n", err.Error())
		return
	}
	if len(scenes) == 0 {
		fmt.Printf("\n\033[33mNo cached scenes for AOI %s.\033[0m\n", aoi)
		return
	}
	fmt.Printf("\n\033[32mCached scenes for %s:\033[0m\n", aoi)
	for _, scene := range scenes {
		fmt.Printf("\033[32m- %s\033[0m\n", scene)
	}
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Cloudfree CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			err := notification.SendDiscordErrorNotification(errMessage)
			if err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Build a cloud-free composite\033[0m")
		fmt.Println("\033[34m2. Create a timelapse animation\033[0m")
		fmt.Println("\033[34m3. List available AOIs\033[0m")
		fmt.Println("\033[34m4. List AOI features\033[0m")
		fmt.Println("\033[34m5. List cached scenes\033[0m")
		fmt.Println("\033[34m6. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}
		reader.ReadString('\n')

		switch choice {
		case 1:
			runBuildComposite(reader)
		case 2:
			runBuildTimelapse(reader)
		case 3:
			listAOIs()
		case 4:
			listFeatures(reader)
		case 5:
			listCachedScenes(reader)
		case 6:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	err := godotenv.Load("../../.env")
	if err != nil {
		err := godotenv.Load("../.env")
		if err != nil {
			godotenv.Load(".env")
		}
	}

	initCLI()
}
