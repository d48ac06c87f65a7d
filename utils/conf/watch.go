package conf

import (
	"io"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads configPath whenever it is written or replaced and hands
// the result to fn. The directory is watched because editors usually
// replace the file rather than write it in place. Close the returned
// watcher to stop.
func Watch(configPath string, fn func(Prefork)) (io.Closer, error) {
	configPath = filepath.Clean(configPath)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = w.Add(filepath.Dir(configPath)); err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != configPath {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cnf, err := LoadFile(configPath)
				if err != nil {
					log.Println("config reload", configPath, err)
					continue
				}
				fn(cnf)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Println("config watch", configPath, err)
			}
		}
	}()
	return w, nil
}
