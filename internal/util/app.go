package util

import "github.com/SeakMengs/OpenSight/internal/constant"

func GetAppName() string {
	return constant.APP_NAME
}

func GetAppVersion() string {
	return constant.APP_VERSION
}
